package io

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/schedule"
)

// Document is the serializable form of a schedule.
type Document struct {
	Levels      []Level `json:"levels"`
	TotalWeight float64 `json:"total_weight"`
}

// Level lists the bins of one schedule level.
type Level struct {
	Level int   `json:"level"`
	Bins  []Bin `json:"bins"`
}

// Bin is one deployable unit: a cluster or a single node.
type Bin struct {
	Weight    float64  `json:"weight"`
	Bandwidth float64  `json:"bandwidth"`
	Members   []string `json:"members"`
}

// NewDocument flattens s. Level 0 is omitted; empty levels between 1 and
// the top are kept so level numbers stay contiguous.
func NewDocument(s *schedule.Schedule) *Document {
	doc := &Document{Levels: []Level{}, TotalWeight: s.TotalWeight()}
	for i := 1; i <= s.Top(); i++ {
		lvl := Level{Level: i, Bins: []Bin{}}
		for _, n := range s.NodesAtLevel(i) {
			members := n.Members()
			names := make([]string, len(members))
			for j, m := range members {
				names[j] = m.Name
			}
			lvl.Bins = append(lvl.Bins, Bin{Weight: n.Weight, Bandwidth: n.Bandwidth(), Members: names})
		}
		doc.Levels = append(doc.Levels, lvl)
	}
	return doc
}

// Units returns the number of bins across all levels.
func (d *Document) Units() int {
	n := 0
	for _, l := range d.Levels {
		n += len(l.Bins)
	}
	return n
}

// Write encodes d as indented JSON to w.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode schedule")
	}
	return nil
}

// ReadDocument decodes a schedule document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode schedule")
	}
	return &d, nil
}
