// SPDX-License-Identifier: Apache-2.0

// Command ddm-krm is a Kubernetes Resource Model (KRM) function: it reads a
// ResourceList from stdin, deep-merges manifest items that share a
// correlation annotation using [ddm.Merge], and writes the merged
// ResourceList to stdout. It plays the role the teacher's cfgmerge-krm
// plays, adapted from per-data-key string merging (keymerge only
// understood map[string]any/[]any) to merging the manifest items
// themselves, since ddm's Value tree already understands nested
// objects/arrays with identity and position directives.
package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sam-fredrickson/ddm"
)

// Annotation constants, grounded on the teacher's config.keymerge.io/*
// scheme (krm.go), renamed to the ddm domain.
const (
	// AnnotationBase is the prefix for all ddm KRM annotations.
	AnnotationBase = "ddm.io/"

	// AnnotationID is a correlation key grouping manifest items for a
	// single merge operation.
	AnnotationID = AnnotationBase + "id"

	// AnnotationOrder defines merge order for items with the same ID.
	// Lower numbers are merged first; order=0 is the base layer.
	AnnotationOrder = AnnotationBase + "order"

	// AnnotationFinalName specifies the desired metadata.name of the
	// merged item. Must be present on the base item (order=0).
	AnnotationFinalName = AnnotationBase + "final-name"

	// AnnotationStrictAnchor overrides Options.StrictAnchor ("true"/"false").
	AnnotationStrictAnchor = AnnotationBase + "strict-anchor"
)

// ResourceList describes the wire shape KRM functions read and write. See:
// https://github.com/kubernetes-sigs/kustomize/blob/master/cmd/config/docs/api-conventions/functions-spec.md
//
// Run itself never decodes into this struct — it stays on [ddm.Value]
// throughout so item key order survives the round trip — but the shape is
// documented here for callers that want to unmarshal ddm-krm's output.
type ResourceList struct {
	APIVersion string           `yaml:"apiVersion" json:"apiVersion"`
	Kind       string           `yaml:"kind" json:"kind"`
	Items      []map[string]any `yaml:"items" json:"items"`
}

type itemGroup struct {
	id    string
	items []orderedItem
}

type orderedItem struct {
	order     int
	value     ddm.Value
	opts      ddm.Options
	finalName string
}

// Run reads a ResourceList from r, merges annotated groups, and writes the
// result to w.
func Run(r io.Reader, w io.Writer) error {
	rl, err := readResourceList(r)
	if err != nil {
		return fmt.Errorf("failed to read ResourceList: %w", err)
	}

	groups, passthrough, err := groupItems(rl)
	if err != nil {
		return fmt.Errorf("failed to group items: %w", err)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	merged := make([]ddm.Value, 0, len(ids))
	for _, id := range ids {
		result, err := mergeGroup(groups[id])
		if err != nil {
			return fmt.Errorf("failed to merge group %q: %w", id, err)
		}
		merged = append(merged, result)
	}

	items := make([]ddm.Value, 0, len(passthrough)+len(merged))
	items = append(items, passthrough...)
	items = append(items, merged...)

	out := ddm.NewObjectWithCapacity(3)
	out.Set("apiVersion", ddm.String("v1"))
	out.Set("kind", ddm.String("ResourceList"))
	out.Set("items", ddm.Array(items...))

	return writeResourceList(w, ddm.ObjectValue(out))
}

// readResourceList parses r as YAML, re-encoding through JSON so object key
// order survives ([ddm.Value]'s UnmarshalJSON walks a token stream; a plain
// yaml.Unmarshal into map[string]any would lose it before the engine ever
// saw it).
func readResourceList(r io.Reader) (ddm.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ddm.Value{}, fmt.Errorf("failed to read input: %w", err)
	}
	jsonBytes, err := yaml.YAMLToJSON(data)
	if err != nil {
		return ddm.Value{}, fmt.Errorf("failed to convert input YAML to JSON: %w", err)
	}
	v, err := ddm.ParseJSONBytes(jsonBytes)
	if err != nil {
		return ddm.Value{}, fmt.Errorf("failed to unmarshal ResourceList: %w", err)
	}
	if v.Kind() != ddm.KindObject {
		return ddm.Value{}, fmt.Errorf("ResourceList must be a mapping, got %s", v.Kind())
	}
	return v, nil
}

func writeResourceList(w io.Writer, rl ddm.Value) error {
	data, err := rl.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal ResourceList: %w", err)
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return fmt.Errorf("failed to convert ResourceList JSON to YAML: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// groupItems separates ResourceList items carrying a ddm.io/id annotation
// from passthrough items, and resolves per-item merge options from
// annotations.
func groupItems(rl ddm.Value) (map[string]*itemGroup, []ddm.Value, error) {
	groups := make(map[string]*itemGroup)
	var passthrough []ddm.Value

	itemsVal, ok := rl.Object().Get("items")
	if !ok || itemsVal.Kind() != ddm.KindArray {
		return groups, passthrough, nil
	}

	for _, item := range itemsVal.Array() {
		annotations := annotationsOf(item)
		id := annotations[AnnotationID]
		if id == "" {
			passthrough = append(passthrough, item)
			continue
		}

		orderStr := annotations[AnnotationOrder]
		if orderStr == "" {
			return nil, nil, fmt.Errorf("item missing required annotation %q", AnnotationOrder)
		}
		order, err := strconv.Atoi(orderStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %q annotation: %w", AnnotationOrder, err)
		}

		opts, err := resolveOptions(annotations)
		if err != nil {
			return nil, nil, err
		}

		if groups[id] == nil {
			groups[id] = &itemGroup{id: id}
		}
		groups[id].items = append(groups[id].items, orderedItem{
			order:     order,
			value:     item,
			opts:      opts,
			finalName: annotations[AnnotationFinalName],
		})
	}

	for id, group := range groups {
		if err := validateGroup(group); err != nil {
			return nil, nil, fmt.Errorf("group %q: %w", id, err)
		}
	}

	return groups, passthrough, nil
}

func validateGroup(group *itemGroup) error {
	slices.SortFunc(group.items, func(a, b orderedItem) int { return a.order - b.order })
	if len(group.items) == 0 {
		return fmt.Errorf("empty group")
	}
	base := group.items[0]
	if base.order != 0 {
		return fmt.Errorf("no base item with order=0 (lowest order is %d)", base.order)
	}
	if base.finalName == "" {
		return fmt.Errorf("base item missing required annotation %q", AnnotationFinalName)
	}
	return nil
}

// mergeGroup deep-merges every item in a group left-to-right, each using
// its own annotation-resolved Options (the overlay's options govern how it
// is applied, mirroring the teacher's per-ConfigMap options design), sets
// metadata.name to the base's final-name, and strips ddm annotations from
// the result.
func mergeGroup(group *itemGroup) (ddm.Value, error) {
	result := group.items[0].value.Clone()
	for _, item := range group.items[1:] {
		merged, err := ddm.Merge(result, item.value, item.opts)
		if err != nil {
			return ddm.Value{}, err
		}
		result = merged
	}

	setFinalName(result, group.items[0].finalName)
	filterDDMAnnotations(result)
	return result, nil
}

func resolveOptions(annotations map[string]string) (ddm.Options, error) {
	opts := ddm.Options{}
	strict := true
	if v, ok := annotations[AnnotationStrictAnchor]; ok && v != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return ddm.Options{}, fmt.Errorf("invalid %q annotation: %w", AnnotationStrictAnchor, err)
		}
		strict = parsed
	}
	opts.StrictAnchor = strict
	return ddm.NewOptions(opts)
}

// annotationsOf returns item's metadata.annotations as a plain string map,
// or an empty map if item has no metadata/annotations object.
func annotationsOf(item ddm.Value) map[string]string {
	out := map[string]string{}
	if item.Kind() != ddm.KindObject {
		return out
	}
	metadata, ok := item.Object().Get("metadata")
	if !ok || metadata.Kind() != ddm.KindObject {
		return out
	}
	annotations, ok := metadata.Object().Get("annotations")
	if !ok || annotations.Kind() != ddm.KindObject {
		return out
	}
	annotations.Object().Range(func(key string, value ddm.Value) bool {
		if value.Kind() == ddm.KindString {
			out[key] = value.String()
		}
		return true
	})
	return out
}

// setFinalName sets item's metadata.name, creating a metadata object if
// item doesn't already have one. A no-op if name is blank.
func setFinalName(item ddm.Value, name string) {
	if name == "" || item.Kind() != ddm.KindObject {
		return
	}
	obj := item.Object()
	metadataVal, ok := obj.Get("metadata")
	var metadata *ddm.Object
	if ok && metadataVal.Kind() == ddm.KindObject {
		metadata = metadataVal.Object()
	} else {
		metadata = ddm.NewObject()
		obj.Set("metadata", ddm.ObjectValue(metadata))
	}
	metadata.Set("name", ddm.String(name))
}

// filterDDMAnnotations strips every ddm.io/* annotation from item's
// metadata.annotations, removing the annotations object entirely if it
// ends up empty.
func filterDDMAnnotations(item ddm.Value) {
	if item.Kind() != ddm.KindObject {
		return
	}
	metadataVal, ok := item.Object().Get("metadata")
	if !ok || metadataVal.Kind() != ddm.KindObject {
		return
	}
	metadata := metadataVal.Object()
	annotationsVal, ok := metadata.Get("annotations")
	if !ok || annotationsVal.Kind() != ddm.KindObject {
		return
	}
	annotations := annotationsVal.Object()
	for _, key := range annotations.Keys() {
		if strings.HasPrefix(key, AnnotationBase) {
			annotations.Delete(key)
		}
	}
	if annotations.Len() == 0 {
		metadata.Delete("annotations")
	}
}
