package chatbot

import (
	"context"
	"log"
	"strings"
	"time"
)

const (
	defaultCustomerName = "Bạn"
	defaultTimeZone     = "Asia/Ho_Chi_Minh"
)

// Personalizer substitutes customer and time variables into a matched
// response template.
type Personalizer struct {
	customers CustomerSource
	fanpages  FanpageSource

	// now is swappable for tests.
	now func() time.Time
}

func NewPersonalizer(customers CustomerSource, fanpages FanpageSource) *Personalizer {
	return &Personalizer{
		customers: customers,
		fanpages:  fanpages,
		now:       time.Now,
	}
}

// Personalize replaces {{name}}, {{phone}}, {{email}}, {{time}} and {{date}}
// tokens in the template. It never fails: a lookup error returns the template
// unchanged, and an unknown customer falls back to placeholder defaults.
func (p *Personalizer) Personalize(ctx context.Context, template, psid, pageID string) string {
	customer, err := p.customers.ByExternalID(ctx, psid, pageID)
	if err != nil {
		log.Printf("Personalizer: customer lookup failed for %s/%s: %v", psid, pageID, err)
		return template
	}

	name := defaultCustomerName
	phone := ""
	email := ""
	if customer != nil {
		if customer.Name != "" {
			name = customer.Name
		}
		phone = customer.Phone
		email = customer.Email
	}

	now := p.now().In(p.location(ctx, pageID))

	result := template
	result = strings.ReplaceAll(result, "{{name}}", name)
	result = strings.ReplaceAll(result, "{{phone}}", phone)
	result = strings.ReplaceAll(result, "{{email}}", email)
	result = strings.ReplaceAll(result, "{{time}}", now.Format("15:04"))
	result = strings.ReplaceAll(result, "{{date}}", now.Format("02/01/2006"))
	return result
}

func (p *Personalizer) location(ctx context.Context, pageID string) *time.Location {
	tz := defaultTimeZone
	if page, err := p.fanpages.ByPageID(ctx, pageID); err == nil && page != nil && page.TimeZone != "" {
		tz = page.TimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}
