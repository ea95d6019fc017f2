package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/xssnick/tonutils-go/address"
)

const (
	// Максимальные длины для различных полей
	MaxUsernameLength          = 32
	MaxFirstNameLength         = 64
	MaxLastNameLength          = 64
	MaxPaymentIdentifierLength = 320
)

// PaymentKind тип платежного идентификатора
type PaymentKind string

const (
	PaymentKindUPI PaymentKind = "upi"
	PaymentKindTON PaymentKind = "ton"
	// любой другой непустой идентификатор (номер телефона, ник и т.п.)
	PaymentKindOther PaymentKind = "other"
)

var (
	// UPI VPA: handle@provider, например alice@upi или alice.k-1@okaxis
	upiVPARegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{1,255}@[a-zA-Z][a-zA-Z0-9]{1,63}$`)
)

// ValidatePaymentIdentifier проверяет идентификатор для выплаты. Допустима любая непустая строка
// в пределах MaxPaymentIdentifierLength; UPI VPA и адрес TON-кошелька только определяют kind.
func ValidatePaymentIdentifier(id string) (PaymentKind, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("payment identifier cannot be empty")
	}
	if len(id) > MaxPaymentIdentifierLength {
		return "", fmt.Errorf("payment identifier cannot exceed %d characters", MaxPaymentIdentifierLength)
	}

	if upiVPARegex.MatchString(id) {
		return PaymentKindUPI, nil
	}
	if _, err := address.ParseAddr(id); err == nil {
		return PaymentKindTON, nil
	}
	if _, err := address.ParseRawAddr(id); err == nil {
		return PaymentKindTON, nil
	}

	return PaymentKindOther, nil
}

// ValidateTaskID проверяет, что идентификатор задания задан. Наличие в каталоге проверяется отдельно:
// любой непустой id вне каталога считается неизвестным заданием.
func ValidateTaskID(taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task id cannot be empty")
	}
	return nil
}

// TruncateName обрезает пробелы и ограничивает длину имени, не разрывая UTF-8 символы
func TruncateName(name string, max int) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	runes := []rune(name)
	return string(runes[:max])
}

// RegisterBindings регистрирует тег `payment_id` в валидаторе gin
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine")
	}
	return v.RegisterValidation("payment_id", func(fl validator.FieldLevel) bool {
		_, err := ValidatePaymentIdentifier(fl.Field().String())
		return err == nil
	})
}
