package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/active.*.toml
var embeddedLocales embed.FS

type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
	lang     string
}

// NewTranslations builds the bundle from the embedded message files. Files named
// active.<lang>.toml inside overrideDir, when it exists, replace matching messages.
func NewTranslations(defaultLang string, overrideDir string) (*Translations, error) {
	if defaultLang == "" {
		return nil, errors.New("language cannot be empty")
	}

	bundle := i18n.NewBundle(language.Portuguese)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(embeddedLocales, "locales/active.*.toml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded locales: %w", err)
	}
	for _, file := range files {
		data, err := embeddedLocales.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading locale file %s: %w", file, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, filepath.Base(file)); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
		}
	}

	if overrideDir != "" {
		if _, err := os.Stat(overrideDir); err == nil {
			overrides, err := filepath.Glob(filepath.Join(overrideDir, "active.*.toml"))
			if err != nil {
				return nil, fmt.Errorf("error reading locales: %w", err)
			}
			for _, file := range overrides {
				if _, err := bundle.LoadMessageFile(file); err != nil {
					return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
				}
			}
		}
	}

	t := &Translations{bundle: bundle}
	if err := t.SetLanguage(defaultLang); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		base, _ := tag.Base()
		if tag.String() == lang || base.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang)
			t.lang = lang
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

func (t *Translations) Language() string {
	return t.lang
}

// GetMessage localizes messageID. A count of zero selects the "other" form; in
// Portuguese CLDR maps 0 to "one", which most messages do not define.
func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	lc := &i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID: messageID,
		},
		TemplateData: templateData,
	}
	if count > 0 {
		lc.PluralCount = count
	}
	localized, err := t.localize.Localize(lc)
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}
