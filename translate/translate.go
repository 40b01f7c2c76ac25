// Package translate prints the user facing messages of xor64 in the
// language of the user's locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	setup   sync.Once
	tag     language.Tag
	printer *message.Printer
)

func load() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("xor64: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	tag = message.MatchLanguage(locales...)
	printer = message.NewPrinter(tag)
}

// Language returns the language messages are printed in.
func Language() language.Tag {
	setup.Do(load)
	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	setup.Do(load)
	return printer.Sprintf(key, args...)
}
