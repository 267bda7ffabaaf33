// Command schemagen generates the JSON schema for the audit configuration.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/config"
)

var outFile = flag.String("o", "schema.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	r := &jsonschema.Reflector{}
	err := r.AddGoComments("github.com/alexwiepking-a11y/CRPM-check", "./pkg")
	if err != nil {
		log.Fatalf("add go comments: %v", err)
	}

	jss := r.Reflect(config.NewConfig())

	jsData, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
