package templates

import (
	"time"
)

// Branding carries the company details shared by every email.
type Branding struct {
	AppName       string
	CompanyName   string
	SupportURL    string
	StoreFrontURL string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func newBaseEmailData(b Branding, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:          name,
		Email:         email,
		Type:          typ,
		AppName:       b.AppName,
		CompanyName:   b.CompanyName,
		SupportURL:    b.SupportURL,
		StoreFrontURL: b.StoreFrontURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewWelcomeData builds the data map for the post-registration welcome email.
func NewWelcomeData(b Branding, name, email string, opts ...Option) map[string]any {
	return ToMap(newBaseEmailData(b, Welcome, name, email, opts...))
}
