package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

// Константы валидации
const (
	MaxItemNameLength    = 100
	MaxDescriptionLength = 2000
	MaxContactLength     = 200
	MinMessageLength     = 1
	MaxMessageLength     = 5000
	MaxURLLength         = 1000
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return apperror.Validation(fmt.Sprintf("%s должно быть не менее %d символов", fieldName, min))
	}
	if max > 0 && length > max {
		return apperror.Validation(fmt.Sprintf("%s должно быть не более %d символов", fieldName, max))
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation(fmt.Sprintf("%s обязательно", fieldName))
	}
	return nil
}

func requiredText(fieldName, value string, max int) error {
	if err := ValidateNonEmpty(fieldName, value); err != nil {
		return err
	}
	return ValidateLength(fieldName, strings.TrimSpace(value), 0, max)
}

func ValidateItemName(name string) error {
	return requiredText("название вещи", name, MaxItemNameLength)
}

func ValidateDescription(description string) error {
	return requiredText("описание", description, MaxDescriptionLength)
}

func ValidateContactDetails(contact string) error {
	return requiredText("контактные данные", contact, MaxContactLength)
}

// ValidateMessageContent проверяет текст сообщения чата.
func ValidateMessageContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return apperror.Validation("сообщение не может быть пустым")
	}
	return ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength)
}

// ValidateURL проверяет ссылку на загруженный файл.
func ValidateURL(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return apperror.Validation("ссылка обязательна")
	}
	if err := ValidateLength("ссылка", link, 0, MaxURLLength); err != nil {
		return err
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return apperror.Validation("некорректный формат URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperror.Validation("ссылка должна начинаться с http:// или https://")
	}
	if parsed.Host == "" {
		return apperror.Validation("ссылка должна содержать доменное имя")
	}
	return nil
}
