package loot

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// ParseBag builds a catalog from bag notation:
//
//	Staff,
//	@weapons
//	    Bat attack="3",
//	    Uzi attack="9" fire="auto",
//	    @deadly
//	        "Plasma Gun" attack="40",
//	        .
//	    .
//
// "@name" opens a branch and "." closes it. An item is a name followed by
// key="value" properties and a comma. Names are identifiers or quoted strings.
func ParseBag(src string) (*Catalog, error) {
	p := &bagParser{}
	p.s.Init(strings.NewReader(src))
	p.s.Filename = "bag"
	p.s.Mode = scanner.ScanIdents | scanner.ScanStrings | scanner.ScanRawStrings | scanner.ScanComments | scanner.SkipComments
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.scanErr == nil {
			p.scanErr = fmt.Errorf("%w at %s: %s", ErrBagSyntax, s.Pos(), msg)
		}
	}
	p.next()

	root := New()
	if err := p.entries(root, false); err != nil {
		return nil, err
	}
	if p.scanErr != nil {
		return nil, p.scanErr
	}
	return root, nil
}

// MustParseBag is ParseBag for literals known to be valid; it panics on error.
func MustParseBag(src string) *Catalog {
	c, err := ParseBag(src)
	if err != nil {
		panic(err)
	}
	return c
}

type bagParser struct {
	s       scanner.Scanner
	tok     rune
	scanErr error
}

func (p *bagParser) next() { p.tok = p.s.Scan() }

func (p *bagParser) errorf(format string, args ...any) error {
	if p.scanErr != nil {
		return p.scanErr
	}
	return fmt.Errorf("%w at %s: %s", ErrBagSyntax, p.s.Position, fmt.Sprintf(format, args...))
}

func (p *bagParser) entries(node *Catalog, nested bool) error {
	for {
		switch p.tok {
		case scanner.EOF:
			if nested {
				return p.errorf("branch is not closed with '.'")
			}
			return nil
		case '.':
			if !nested {
				return p.errorf("unexpected '.' outside of a branch")
			}
			p.next()
			return nil
		case '@':
			p.next()
			name, err := p.name()
			if err != nil {
				return err
			}
			sub := New()
			if err := p.entries(sub, true); err != nil {
				return err
			}
			node.Attach(name, sub)
		case scanner.Ident, scanner.String, scanner.RawString:
			it, err := p.item()
			if err != nil {
				return err
			}
			node.Add(it)
		default:
			return p.errorf("unexpected %s", scanner.TokenString(p.tok))
		}
	}
}

func (p *bagParser) name() (string, error) {
	switch p.tok {
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()
		return name, nil
	case scanner.String, scanner.RawString:
		name, err := strconv.Unquote(p.s.TokenText())
		if err != nil {
			return "", p.errorf("bad quoted name %s", p.s.TokenText())
		}
		p.next()
		return name, nil
	default:
		return "", p.errorf("expected a name, got %s", scanner.TokenString(p.tok))
	}
}

func (p *bagParser) item() (Item, error) {
	name, err := p.name()
	if err != nil {
		return Item{}, err
	}

	var props Props
	for p.tok == scanner.Ident {
		key := p.s.TokenText()
		p.next()
		if p.tok != '=' {
			return Item{}, p.errorf("expected '=' after %q (missing ',' between items?)", key)
		}
		p.next()
		if p.tok != scanner.String && p.tok != scanner.RawString {
			return Item{}, p.errorf("expected a quoted value for %q", key)
		}
		val, err := strconv.Unquote(p.s.TokenText())
		if err != nil {
			return Item{}, p.errorf("bad quoted value for %q", key)
		}
		p.next()
		if props == nil {
			props = make(Props)
		}
		props[key] = val
	}

	if p.tok == ',' {
		p.next()
	}
	return Item{Name: name, Props: props}, nil
}
