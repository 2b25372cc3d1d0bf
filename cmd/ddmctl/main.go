// SPDX-License-Identifier: Apache-2.0

// Command ddmctl merges JSON, YAML, and TOML documents using deterministic
// deep merge: objects merge key by key, array items are matched by an
// identity field rather than position, and $position/$anchor/$patch/$value
// directives in an override control reordering, deletion, and typed-value
// replacement.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/sam-fredrickson/ddm"
	"github.com/sam-fredrickson/ddm/internal/config"
	"github.com/sam-fredrickson/ddm/internal/diag"
)

var version = "dev"

func main() {
	var failed bool
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()

	program := os.Args[0]
	var flags config.Flags
	var outputPath string
	var outputFormat format
	var showVersion bool

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage: %s [flags] FILE...\n\n", program)
		fmt.Fprintf(out, "Deterministically deep-merges JSON, YAML, and TOML documents. Objects merge\n")
		fmt.Fprintf(out, "key by key; array items are matched by an identity field (default $id) and\n")
		fmt.Fprintf(out, "deep-merged in place, not overwritten positionally.\n\n")
		fmt.Fprintf(out, "Example:\n")
		fmt.Fprintf(out, "  # merge an environment overlay onto a common base\n")
		fmt.Fprintf(out, "  %s -out config.yaml base.yaml env.yaml\n\n", program)
		fmt.Fprintf(out, "Flags:\n")
		flag.PrintDefaults()
	}

	config.RegisterFlags(flag.CommandLine, &flags)
	flag.StringVar(&outputPath, "out", "", "output file path (defaults to stdout)")
	flag.Var(&outputFormat, "format", `output format [json, yaml, toml] (defaults to first file's format)`)
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	logger := diag.New(os.Stderr)

	opts, err := flags.Options()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		failed = true
		return
	}

	files := flag.Args()
	var output io.Writer
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
			return
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	if err := Run(opts, files, outputFormat, output, logger); err != nil {
		logger.MergeFailed(err)
		fmt.Fprintf(os.Stderr, "usage: %s [flags] FILE...\n", program)
		failed = true
		return
	}
}

// Run merges files in order under opts and writes the result to output
// using outputFormat (or the first file's detected format, if blank).
func Run(opts ddm.Options, files []string, outputFormat format, output io.Writer, logger *diag.Logger) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to merge")
	}

	var layers []ddm.Value
	for _, file := range files {
		v, fileFormat, err := readLayer(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		layers = append(layers, v)
		if outputFormat == "" {
			outputFormat = fileFormat
		}
	}

	logger.MergeStarting(len(layers), opts)

	merged, err := ddm.MergeAll(opts, layers...)
	if err != nil {
		return fmt.Errorf("merge failed while processing files %v: %w", files, err)
	}

	marshaled, err := outputFormat.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal result as %s: %w", outputFormat, err)
	}

	if _, err := output.Write(marshaled); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// readLayer reads file and parses it as a [ddm.Value] using the format
// implied by its extension.
//
// JSON and YAML layers are decoded straight to [ddm.Value] (YAML via a
// YAML-to-JSON re-encode, since [ddm.Encode]'s generic any-round-trip
// through encoding/json would both lose map key order and re-sort keys
// alphabetically): object key order is semantic to DDM, so the CLI cannot
// afford to lose it between the file and the engine the way the teacher's
// map[string]any pipeline did. TOML has no comparable ordered-decode path
// in BurntSushi/toml, so TOML layers keep the any-round-trip: their object
// keys reach the engine sorted alphabetically at every level, not in file
// order.
func readLayer(file string) (ddm.Value, format, error) {
	var f format

	contents, err := os.ReadFile(file)
	if err != nil {
		return ddm.Value{}, f, err
	}

	extension := strings.ToLower(filepath.Ext(file))
	switch extension {
	case ".json":
		f = validFormats["json"]
		v, err := ddm.ParseJSONBytes(contents)
		if err != nil {
			return ddm.Value{}, f, err
		}
		return v, f, nil
	case ".yaml", ".yml":
		f = validFormats["yaml"]
		jsonBytes, err := yaml.YAMLToJSON(contents)
		if err != nil {
			return ddm.Value{}, f, err
		}
		v, err := ddm.ParseJSONBytes(jsonBytes)
		if err != nil {
			return ddm.Value{}, f, err
		}
		return v, f, nil
	case ".toml":
		f = validFormats["toml"]
		var doc any
		if err := toml.Unmarshal(contents, &doc); err != nil {
			return ddm.Value{}, f, err
		}
		v, err := ddm.Encode(doc)
		if err != nil {
			return ddm.Value{}, f, err
		}
		return v, f, nil
	default:
		return ddm.Value{}, f, fmt.Errorf("unsupported file format: %s", extension)
	}
}

type format string

var validFormats = map[string]format{
	"":     format(""),
	"json": format("json"),
	"yaml": format("yaml"),
	"toml": format("toml"),
}

func (f *format) String() string {
	return string(*f)
}

func (f *format) Set(value string) error {
	value = strings.ToLower(value)
	parsed, ok := validFormats[value]
	if !ok {
		return fmt.Errorf("invalid format %q", value)
	}
	*f = parsed
	return nil
}

// Marshal renders doc, which must be the result of [ddm.Merge]/
// [ddm.MergeAll], in f's format.
//
// The JSON and YAML branches marshal doc's ordered JSON bytes and the TOML
// branch walks doc's tree directly; none decodes to a map[string]any
// first: decoding through encoding/json into a plain
// Go map (as [ddm.Decode] does) both discards the object's insertion order
// and, on the way back out through encoding/json or a reflection-based
// marshaler, re-sorts the keys alphabetically. That would defeat the same
// key-order invariant readLayer takes care to preserve on the way in.
func (f format) Marshal(doc ddm.Value) ([]byte, error) {
	orderedJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	switch f {
	case "json":
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, orderedJSON, "", "  "); err != nil {
			return nil, err
		}
		return pretty.Bytes(), nil
	case "yaml":
		return yaml.JSONToYAML(orderedJSON)
	case "toml":
		return marshalTOML(doc)
	default:
		return nil, fmt.Errorf("invalid format %q", f)
	}
}

// marshalTOML renders doc as TOML text, walking its Object/Array structure
// directly in insertion order rather than going through BurntSushi/toml's
// reflection-based Marshal (which, like encoding/json, only understands
// map[string]any and has no notion of the order doc's keys were built in).
// Nested objects become `[a.b.c]` table headers and arrays of objects
// become `[[a.b.c]]` array-of-tables headers, matching ordinary TOML
// authoring style; objects and arrays nested inside another array are
// rendered inline, since a table header can't appear inside an array.
func marshalTOML(doc ddm.Value) ([]byte, error) {
	if doc.Kind() != ddm.KindObject {
		return nil, fmt.Errorf("toml: top-level document must be an object, got %s", doc.Kind())
	}
	var buf bytes.Buffer
	if err := writeTOMLTable(&buf, nil, doc.Object()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeTOMLTable writes obj's scalar/array keys as `key = value` lines,
// then recurses into its object-valued and array-of-object-valued keys as
// `[path]`/`[[path]]` tables, path being the dotted key path from the
// document root.
func writeTOMLTable(buf *bytes.Buffer, path []string, obj *ddm.Object) error {
	var tableKeys, tableArrayKeys []string
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		switch {
		case val.Kind() == ddm.KindObject:
			tableKeys = append(tableKeys, key)
		case val.Kind() == ddm.KindArray && isTableArray(val):
			tableArrayKeys = append(tableArrayKeys, key)
		default:
			encoded, err := tomlValue(val)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			buf.WriteString(tomlKey(key))
			buf.WriteString(" = ")
			buf.WriteString(encoded)
			buf.WriteByte('\n')
		}
	}

	for _, key := range tableKeys {
		val, _ := obj.Get(key)
		childPath := append(append([]string(nil), path...), key)
		buf.WriteByte('\n')
		buf.WriteString("[" + tomlPath(childPath) + "]\n")
		if err := writeTOMLTable(buf, childPath, val.Object()); err != nil {
			return fmt.Errorf("table %q: %w", key, err)
		}
	}

	for _, key := range tableArrayKeys {
		val, _ := obj.Get(key)
		childPath := append(append([]string(nil), path...), key)
		for _, item := range val.Array() {
			buf.WriteByte('\n')
			buf.WriteString("[[" + tomlPath(childPath) + "]]\n")
			if err := writeTOMLTable(buf, childPath, item.Object()); err != nil {
				return fmt.Errorf("table array %q: %w", key, err)
			}
		}
	}
	return nil
}

// isTableArray reports whether v is a non-empty array whose every element
// is an object, i.e. one TOML can render as an array-of-tables rather than
// an inline array.
func isTableArray(v ddm.Value) bool {
	items := v.Array()
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Kind() != ddm.KindObject {
			return false
		}
	}
	return true
}

// tomlValue renders v as an inline TOML value: a literal for scalars, a
// bracketed inline array for arrays, and a `{ k = v, ... }` inline table
// for objects nested inside an array (a table header can't appear there).
func tomlValue(v ddm.Value) (string, error) {
	switch v.Kind() {
	case ddm.KindNull:
		return "", fmt.Errorf("TOML cannot represent an explicit null value")
	case ddm.KindBool:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case ddm.KindNumber:
		return v.NumberString(), nil
	case ddm.KindString:
		return tomlString(v.String())
	case ddm.KindArray:
		parts := make([]string, len(v.Array()))
		for i, item := range v.Array() {
			encoded, err := tomlValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = encoded
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case ddm.KindObject:
		keys := v.Object().Keys()
		parts := make([]string, len(keys))
		for i, key := range keys {
			val, _ := v.Object().Get(key)
			encoded, err := tomlValue(val)
			if err != nil {
				return "", fmt.Errorf("key %q: %w", key, err)
			}
			parts[i] = tomlKey(key) + " = " + encoded
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	default:
		return "", fmt.Errorf("toml: unsupported value kind %s", v.Kind())
	}
}

// tomlString quotes s as a TOML basic string. TOML's basic string syntax
// is deliberately modeled on JSON's, so encoding/json's string quoting
// produces a valid TOML basic string directly.
func tomlString(s string) (string, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// isBareKeyRune reports whether r is allowed in a TOML bare key.
func isBareKeyRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// tomlKey renders key as a bare key if possible, else as a quoted key
// (using the same basic-string quoting as an ordinary string value).
func tomlKey(key string) string {
	if key == "" {
		quoted, _ := tomlString(key)
		return quoted
	}
	for _, r := range key {
		if !isBareKeyRune(r) {
			quoted, _ := tomlString(key)
			return quoted
		}
	}
	return key
}

// tomlPath renders a dotted key path for a table/array-of-tables header.
func tomlPath(path []string) string {
	parts := make([]string, len(path))
	for i, key := range path {
		parts[i] = tomlKey(key)
	}
	return strings.Join(parts, ".")
}
