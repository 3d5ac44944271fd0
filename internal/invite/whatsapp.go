package invite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
)

var messages = map[domain.Language]string{
	domain.LanguageRU: "Привет, %s! Приглашаем тебя на нашу свадьбу. Пожалуйста, подтверди участие по ссылке: %s",
	domain.LanguageHE: "היי %s! אנחנו שמחים להזמין אותך לחתונה שלנו. אשר/י הגעה בקישור: %s",
}

// SanitizePhone strips everything but digits and drops leading zeros, the
// format wa.me expects. Returns the input unchanged if no digits remain.
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return phone
	}
	return strings.TrimLeft(digits, "0")
}

// InviteURL is the guest's personal RSVP landing page.
func InviteURL(baseURL, guestID string) string {
	return strings.TrimRight(baseURL, "/") + "/invite/" + guestID
}

// WhatsAppLink builds a wa.me deep link carrying a localized invite message
// with the guest's RSVP URL embedded.
func WhatsAppLink(guest *domain.Guest, baseURL string) string {
	tmpl, ok := messages[guest.Language]
	if !ok {
		tmpl = messages[domain.LanguageRU]
	}
	message := fmt.Sprintf(tmpl, guest.FirstName, InviteURL(baseURL, guest.ID))

	phone := SanitizePhone(guest.Phone)
	if phone == "" {
		phone = guest.Phone
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}
