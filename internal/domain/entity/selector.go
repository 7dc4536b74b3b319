package entity

import (
	"fmt"
	"strconv"
	"strings"
)

const zyronIDAttr = "data-zyron-id"

// Selector addresses an element either by CSS or by the numeric id the
// extension stamps on interactive elements during a scan.
type Selector struct {
	css  string
	id   int
	byID bool
}

func ByCSS(css string) Selector {
	return Selector{css: css}
}

func ByZyronID(id int) Selector {
	return Selector{id: id, byID: true}
}

// ParseSelector turns free-form input into a Selector. All-digit input is a
// scan id, anything else is CSS.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	if s != "" && strings.Trim(s, "0123456789") == "" {
		if id, err := strconv.Atoi(s); err == nil {
			return ByZyronID(id)
		}
	}
	return ByCSS(s)
}

func (s Selector) IsZyronID() bool {
	return s.byID
}

func (s Selector) IsZero() bool {
	return !s.byID && s.css == ""
}

// String renders the CSS selector sent to the extension.
func (s Selector) String() string {
	if s.byID {
		return fmt.Sprintf(`[%s="%d"]`, zyronIDAttr, s.id)
	}
	return s.css
}
