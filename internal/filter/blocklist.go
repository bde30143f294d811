// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package filter

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wneessen/waybar-whereto/internal/places"
)

// Blocklist rejects places whose name contains one of its entries. Matching is case-insensitive
// and ignores whitespace, so "Star bucks" and "STARBUCKS" block the same places.
type Blocklist struct {
	entries []string
}

type blocklistFile struct {
	Franchises []string `yaml:"franchises"`
}

func NewBlocklist(entries ...string) *Blocklist {
	list := &Blocklist{}
	list.Add(entries...)
	return list
}

// LoadBlocklist reads a YAML file with a top-level "franchises" list.
func LoadBlocklist(path string) (*Blocklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocklist file: %w", err)
	}
	var file blocklistFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse blocklist file: %w", err)
	}
	return NewBlocklist(file.Franchises...), nil
}

// Add appends entries to the list, skipping blanks and duplicates.
func (b *Blocklist) Add(entries ...string) {
	for _, entry := range entries {
		entry = normalize(entry)
		if entry == "" || slices.Contains(b.entries, entry) {
			continue
		}
		b.entries = append(b.entries, entry)
	}
}

// Merge adds all entries of other to b.
func (b *Blocklist) Merge(other *Blocklist) {
	if other == nil {
		return
	}
	b.Add(other.entries...)
}

func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Allows reports whether name matches none of the entries.
func (b *Blocklist) Allows(name string) bool {
	if b == nil {
		return true
	}
	name = normalize(name)
	for _, entry := range b.entries {
		if strings.Contains(name, entry) {
			return false
		}
	}
	return true
}

// Filter returns the blocklist as a candidate filter.
func (b *Blocklist) Filter() Func {
	return func(c places.Candidate) bool {
		return b.Allows(c.Name)
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}
