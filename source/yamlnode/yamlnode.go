// Package yamlnode turns a gopkg.in/yaml.v3 node tree into an engine.TokenSource, so
// YAML documents go through the same decoding and enforcement as JSON.
package yamlnode

import (
	"fmt"
	"io"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/constraint/internal/engine"
)

// NewBytes parses the first YAML document in data.
func NewBytes(data []byte) (eng.TokenSource, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s := &source{}
	if err := s.emit(&doc); err != nil {
		return nil, err
	}
	return s, nil
}

// NewNode returns the token stream of an already parsed node.
func NewNode(n *yaml.Node) (eng.TokenSource, error) {
	s := &source{}
	if err := s.emit(n); err != nil {
		return nil, err
	}
	return s, nil
}

type source struct {
	toks []eng.Token
	pos  int
}

func (s *source) NextToken() (eng.Token, error) {
	if s.pos >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

// Location is unknown for node trees.
func (s *source) Location() int64 { return -1 }

func (s *source) emit(n *yaml.Node) error {
	if n == nil {
		return nil
	}
	line := int64(n.Line)
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			return s.emit(n.Content[0])
		}
	case yaml.AliasNode:
		return s.emit(n.Alias)
	case yaml.MappingNode:
		s.toks = append(s.toks, eng.Token{Kind: eng.KindBeginObject, Offset: line})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("yamlnode: line %d: mapping key must be a scalar", k.Line)
			}
			s.toks = append(s.toks, eng.Token{Kind: eng.KindKey, String: k.Value, Offset: int64(k.Line)})
			if err := s.emit(n.Content[i+1]); err != nil {
				return err
			}
		}
		s.toks = append(s.toks, eng.Token{Kind: eng.KindEndObject, Offset: line})
	case yaml.SequenceNode:
		s.toks = append(s.toks, eng.Token{Kind: eng.KindBeginArray, Offset: line})
		for _, c := range n.Content {
			if err := s.emit(c); err != nil {
				return err
			}
		}
		s.toks = append(s.toks, eng.Token{Kind: eng.KindEndArray, Offset: line})
	case yaml.ScalarNode:
		s.toks = append(s.toks, scalar(n))
	}
	return nil
}

func scalar(n *yaml.Node) eng.Token {
	line := int64(n.Line)
	switch n.ShortTag() {
	case "!!null":
		return eng.Token{Kind: eng.KindNull, Offset: line}
	case "!!bool":
		var b bool
		if n.Decode(&b) == nil {
			return eng.Token{Kind: eng.KindBool, Bool: b, Offset: line}
		}
	case "!!int":
		var i int64
		if n.Decode(&i) == nil {
			return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(i, 10), Offset: line}
		}
		if _, ok := new(big.Int).SetString(n.Value, 10); ok {
			return eng.Token{Kind: eng.KindNumber, Number: n.Value, Offset: line}
		}
	case "!!float":
		if _, ok := new(big.Rat).SetString(n.Value); ok {
			return eng.Token{Kind: eng.KindNumber, Number: n.Value, Offset: line}
		}
		var f float64
		// .inf, .nan and underscored forms
		if n.Decode(&f) == nil {
			return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(f, 'g', -1, 64), Offset: line}
		}
	}
	return eng.Token{Kind: eng.KindString, String: n.Value, Offset: line}
}
