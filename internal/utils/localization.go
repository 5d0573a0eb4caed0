package contextutils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Locale represents a language locale (e.g., "en", "my")
type Locale string

const (
	// LocaleEnglish represents English language
	LocaleEnglish Locale = "en"
	// LocaleMyanmar represents Myanmar (Burmese) language
	LocaleMyanmar Locale = "my"
)

// LocalizedMessages contains localized error messages for different locales
type LocalizedMessages struct {
	messages map[ErrorCode]map[Locale]string
}

// NewLocalizedMessages creates a new instance of localized messages
func NewLocalizedMessages() *LocalizedMessages {
	return &LocalizedMessages{
		messages: make(map[ErrorCode]map[Locale]string),
	}
}

// AddMessage adds a localized message for a specific error code and locale
func (lm *LocalizedMessages) AddMessage(code ErrorCode, locale Locale, message string) {
	if lm.messages[code] == nil {
		lm.messages[code] = make(map[Locale]string)
	}
	lm.messages[code][locale] = message
}

// GetMessage returns the localized message for an error code and locale
func (lm *LocalizedMessages) GetMessage(code ErrorCode, locale Locale) string {
	if localeMessages, exists := lm.messages[code]; exists {
		if message, exists := localeMessages[locale]; exists {
			return message
		}

		// Fallback to English if the specific locale doesn't have a message
		if message, exists := localeMessages[LocaleEnglish]; exists {
			return message
		}
	}

	return getDefaultMessage(code)
}

// GetMessageWithDetails returns a localized message with additional details
func (lm *LocalizedMessages) GetMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	message := lm.GetMessage(code, locale)
	if details != "" {
		return fmt.Sprintf("%s: %s", message, details)
	}
	return message
}

// getDefaultMessage returns a default English message for error codes
func getDefaultMessage(code ErrorCode) string {
	switch code {
	case ErrorCodeDatabaseConnection:
		return "Database connection failed"
	case ErrorCodeDatabaseQuery:
		return "Database query failed"
	case ErrorCodeDatabaseTransaction:
		return "Database transaction failed"
	case ErrorCodeRecordNotFound:
		return "Record not found"
	case ErrorCodeRecordExists:
		return "Record already exists"
	case ErrorCodeForeignKeyViolation:
		return "Foreign key constraint violation"
	case ErrorCodeInvalidInput:
		return "Invalid input"
	case ErrorCodeMissingRequired:
		return "Missing required field"
	case ErrorCodeValidationFailed:
		return "Validation failed"
	case ErrorCodeUnauthorized:
		return "Unauthorized access"
	case ErrorCodeForbidden:
		return "Access forbidden"
	case ErrorCodeInvalidCredentials:
		return "Invalid credentials"
	case ErrorCodeSessionExpired:
		return "Session expired"
	case ErrorCodeServiceUnavailable:
		return "Service temporarily unavailable"
	case ErrorCodeTimeout:
		return "Request timeout"
	case ErrorCodeInternalError:
		return "Internal server error"
	case ErrorCodeConflict:
		return "Operation conflicts with current state"
	case ErrorCodeProviderQuotaExceeded:
		return "Assistant usage quota exceeded"
	case ErrorCodeProviderRateLimited:
		return "Assistant is receiving too many requests"
	case ErrorCodeProviderModelUnavailable:
		return "Assistant model unavailable"
	case ErrorCodeProviderTransientNetwork:
		return "Assistant connection interrupted"
	case ErrorCodeProviderUnknown:
		return "Assistant request failed"
	case ErrorCodeAllProvidersExhausted:
		return "The assistant is overloaded right now. Please try again in a moment."
	case ErrorCodeNoCredentialsConfigured:
		return "The assistant is not configured. Please contact the administrator."
	case ErrorCodeUnknownMode:
		return "Unknown chat mode"
	case ErrorCodeQuestionBankEmpty:
		return "No quiz questions available"
	default:
		return "An error occurred"
	}
}

// LoadMessagesFromJSON loads localized messages from a JSON structure
func (lm *LocalizedMessages) LoadMessagesFromJSON(jsonData string) error {
	var data map[string]map[string]string
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return WrapError(err, "failed to parse localization JSON")
	}

	for codeStr, localeMessages := range data {
		code := ErrorCode(codeStr)
		for localeStr, message := range localeMessages {
			locale := Locale(localeStr)
			lm.AddMessage(code, locale, message)
		}
	}

	return nil
}

// GetSupportedLocales returns a list of supported locales
func (lm *LocalizedMessages) GetSupportedLocales() []Locale {
	locales := make(map[Locale]bool)

	for _, localeMessages := range lm.messages {
		for locale := range localeMessages {
			locales[locale] = true
		}
	}

	result := make([]Locale, 0, len(locales))
	for locale := range locales {
		result = append(result, locale)
	}

	return result
}

// ParseLocale parses a locale string (e.g., "en-US", "my-MM") and returns the language part
func ParseLocale(localeStr string) Locale {
	parts := strings.Split(localeStr, "-")
	if len(parts) > 0 && parts[0] != "" {
		return Locale(strings.ToLower(parts[0]))
	}
	return LocaleEnglish
}

// Global instance of localized messages
var globalLocalizedMessages = NewLocalizedMessages()

// init loads default localized messages
func init() {
	globalLocalizedMessages.AddMessage(ErrorCodeAllProvidersExhausted, LocaleMyanmar,
		"အကူအညီပေးသူ စနစ်သည် လတ်တလော အလုပ်များနေပါသည်။ ခဏအကြာတွင် ထပ်စမ်းကြည့်ပါ။")
	globalLocalizedMessages.AddMessage(ErrorCodeNoCredentialsConfigured, LocaleMyanmar,
		"အကူအညီပေးသူ စနစ်ကို မပြင်ဆင်ရသေးပါ။ စီမံခန့်ခွဲသူကို ဆက်သွယ်ပါ။")
	globalLocalizedMessages.AddMessage(ErrorCodeUnauthorized, LocaleMyanmar,
		"ခွင့်ပြုချက်မရှိပါ")
	globalLocalizedMessages.AddMessage(ErrorCodeInvalidCredentials, LocaleMyanmar,
		"အကောင့်အချက်အလက် မမှန်ကန်ပါ")
	globalLocalizedMessages.AddMessage(ErrorCodeInternalError, LocaleMyanmar,
		"ဆာဗာအတွင်းပိုင်း အမှားဖြစ်ပွားပါသည်")
}

// GetLocalizedMessage returns a localized error message using the global instance
func GetLocalizedMessage(code ErrorCode, locale Locale) string {
	return globalLocalizedMessages.GetMessage(code, locale)
}

// GetLocalizedMessageWithDetails returns a localized error message with details
func GetLocalizedMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	return globalLocalizedMessages.GetMessageWithDetails(code, locale, details)
}

// SetGlobalLocalizedMessages sets the global localized messages instance
func SetGlobalLocalizedMessages(messages *LocalizedMessages) {
	globalLocalizedMessages = messages
}
