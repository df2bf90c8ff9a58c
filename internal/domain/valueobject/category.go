package valueobject

import (
	"strings"

	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryGadgets     Category = "Gadgets"
	CategoryClothing    Category = "Clothing"
	CategoryDocuments   Category = "Documents"
	CategoryWallet      Category = "Wallet"
	CategoryKeys        Category = "Keys"
	CategoryOther       Category = "Other"
)

var categories = []Category{
	CategoryElectronics,
	CategoryGadgets,
	CategoryClothing,
	CategoryDocuments,
	CategoryWallet,
	CategoryKeys,
	CategoryOther,
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// NewCategory принимает значение из формы. Регистр не важен,
// но в домене хранится каноническое написание.
func NewCategory(value string) (Category, error) {
	value = strings.TrimSpace(value)
	for _, known := range categories {
		if strings.EqualFold(string(known), value) {
			return known, nil
		}
	}
	return "", apperror.Validation("некорректная категория")
}
