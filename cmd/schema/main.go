package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/sportsracer/repman/internal/net/proto"
)

type messageSchema struct {
	name        string
	description string
	value       any
}

var messages = []messageSchema{
	{"join", "Client request to enter the world under a display name", new(proto.Join)},
	{"input", "Client key state; w drives forward, a and d turn, s is ignored", new(proto.Input)},
	{"leave", "Client request to leave the world", new(proto.Leave)},
	{"joined", "Server acknowledgement of a successful join", new(proto.Joined)},
	{"state", "Full world snapshot broadcast every tick to joined clients", new(proto.State)},
	{"error", "Server rejection of a message; the connection stays open", new(proto.Error)},
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write one JSON schema per message")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for name, schema := range buildSchemas() {
		path := filepath.Join(outDir, name+".schema.json")
		if err := writeSchema(path, schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schemas := make(map[string]*jsonschema.Schema, len(messages))
	for _, m := range messages {
		schema := reflector.Reflect(m.value)
		schema.Title = "Repman " + m.name + " message"
		schema.Description = m.description
		schemas[m.name] = schema
	}
	return schemas
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
