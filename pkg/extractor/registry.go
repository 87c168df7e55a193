package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one interned style.
type Entry struct {
	ID    string
	Value StyleValue
}

// Registry deduplicates style values for one simplification run.
//
// Values are kept in an arena in first-seen order and looked up by their canonical
// JSON encoding, so two structurally equal values always share one id. The registry
// only grows. It is not safe for concurrent use; every run gets its own instance.
type Registry struct {
	entries  []Entry
	byKey    map[string]int // canonical encoding -> arena index
	byID     map[string]int // id -> arena index
	counters map[string]int // prefix -> last generated number
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:    make(map[string]int),
		byID:     make(map[string]int),
		counters: make(map[string]int),
	}
}

// Intern returns the id of v, recording it on first sight. Ids have the form
// "<prefix>_<n>" where the prefix names the value kind (fill, layout, style, ...).
func (r *Registry) Intern(v StyleValue) string {
	return r.InternNamed("", v)
}

// InternNamed is like Intern but prefers name (usually a published Figma style name)
// as the id of a newly recorded value. A value that is already interned keeps its
// existing id, and a name already bound to a different value is ignored.
func (r *Registry) InternNamed(name string, v StyleValue) string {
	key := canonicalKey(v)
	if idx, ok := r.byKey[key]; ok {
		return r.entries[idx].ID
	}

	id := name
	if _, taken := r.byID[id]; id == "" || taken {
		id = r.nextID(v.stylePrefix())
	}

	r.entries = append(r.entries, Entry{ID: id, Value: v})
	idx := len(r.entries) - 1
	r.byKey[key] = idx
	r.byID[id] = idx
	return id
}

func (r *Registry) nextID(prefix string) string {
	for {
		r.counters[prefix]++
		id := fmt.Sprintf("%s_%d", prefix, r.counters[prefix])
		if _, taken := r.byID[id]; !taken {
			return id
		}
	}
}

// Get returns the value recorded under id.
func (r *Registry) Get(id string) (StyleValue, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.entries[idx].Value, true
}

// Len reports the number of distinct values.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the interned values in insertion order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// canonicalKey encodes v deterministically. Struct fields encode in declaration
// order and the kind prefix keeps values of different kinds apart.
func canonicalKey(v StyleValue) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Unreachable for the closed set of style kinds; keep the value distinct.
		return fmt.Sprintf("%s:%#v", v.stylePrefix(), v)
	}
	return v.stylePrefix() + ":" + string(b)
}

// MarshalJSON encodes the registry as an object whose keys keep insertion order.
func (r *Registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("encode style %s: %w", e.ID, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the registry as a mapping whose keys keep insertion order.
func (r *Registry) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range r.entries {
		var value yaml.Node
		if err := value.Encode(e.Value); err != nil {
			return nil, fmt.Errorf("encode style %s: %w", e.ID, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.ID},
			&value,
		)
	}
	return node, nil
}
