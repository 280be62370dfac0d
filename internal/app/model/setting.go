package model

import (
	"time"
)

// Setting is one persisted section of the site configuration, stored as JSON.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

type SettingsSection string

const (
	SectionStoreInfo       SettingsSection = "store_info"
	SectionDeliveryCharges SettingsSection = "delivery_charges"
	SectionMetaPixel       SettingsSection = "meta_pixel"
	SectionPolicies        SettingsSection = "policies"
	SectionHomepageContent SettingsSection = "homepage_content"
)

// SettingsSections is the load order used when assembling Settings.
var SettingsSections = []SettingsSection{
	SectionStoreInfo,
	SectionDeliveryCharges,
	SectionMetaPixel,
	SectionPolicies,
	SectionHomepageContent,
}

func (s SettingsSection) Valid() bool {
	for _, known := range SettingsSections {
		if s == known {
			return true
		}
	}
	return false
}

type StoreInfo struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address"`
}

type DeliveryCharges struct {
	InsideCity            float64 `json:"inside_city" validate:"gte=0"`
	OutsideCity           float64 `json:"outside_city" validate:"gte=0"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold" validate:"gte=0"`
}

// ChargeFor returns the configured charge for a zone, ignoring the free shipping threshold.
func (d DeliveryCharges) ChargeFor(zone DeliveryZone) float64 {
	if zone == ZoneOutsideCity {
		return d.OutsideCity
	}
	return d.InsideCity
}

type MetaPixel struct {
	Enabled bool   `json:"enabled"`
	PixelID string `json:"pixel_id" validate:"required_if=Enabled true"`
}

type Policies struct {
	ReturnDays   int    `json:"return_days" validate:"gte=0"`
	ShippingInfo string `json:"shipping_info"`
}

type HeroSlide struct {
	ID       string `json:"id"`
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle"`
	CTAText  string `json:"cta_text"`
	CTALink  string `json:"cta_link"`
	ImageURL string `json:"image_url"`
}

type Testimonial struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

type HomepageContent struct {
	HeroSlides    []HeroSlide   `json:"hero_slides" validate:"dive"`
	Testimonials  []Testimonial `json:"testimonials" validate:"dive"`
	HeroBadgeText string        `json:"hero_badge_text"`
}

// Settings is the whole site configuration, assembled once per request.
type Settings struct {
	StoreInfo       StoreInfo       `json:"store_info"`
	DeliveryCharges DeliveryCharges `json:"delivery_charges"`
	MetaPixel       MetaPixel       `json:"meta_pixel"`
	Policies        Policies        `json:"policies"`
	HomepageContent HomepageContent `json:"homepage_content"`
}

func DefaultSettings() Settings {
	return Settings{
		StoreInfo: StoreInfo{
			Name: "Asha's Craft",
		},
		DeliveryCharges: DeliveryCharges{
			InsideCity:            60,
			OutsideCity:           120,
			FreeShippingThreshold: 2000,
		},
		Policies: Policies{
			ReturnDays:   7,
			ShippingInfo: "Inside Dhaka delivery takes 1-2 days, outside Dhaka 3-5 days.",
		},
		HomepageContent: HomepageContent{
			HeroSlides: []HeroSlide{
				{
					ID:       "1",
					Title:    "Discover Unique Artisan Crafts",
					Subtitle: "Explore our collection of handmade jewelry, home decor, and traditional clothing from Bangladesh's finest artisans.",
					CTAText:  "Shop Now",
					CTALink:  "/shop",
				},
			},
			Testimonials:  []Testimonial{},
			HeroBadgeText: "Handcrafted with Love",
		},
	}
}
