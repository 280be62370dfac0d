package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/internal/app/repository"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownSettingsSection = errors.New("unknown settings section")
	ErrInvalidSettings        = errors.New("invalid settings")
)

type SettingsService interface {
	// Load assembles every section, falling back to defaults for sections never saved.
	Load() (model.Settings, error)
	// UpdateSection replaces one section with the JSON document in raw.
	UpdateSection(section model.SettingsSection, raw []byte) (model.Settings, error)
}

type settingsService struct {
	settingRepo repository.SettingRepository
	validate    *validator.Validate
}

func NewSettingsService(settingRepo repository.SettingRepository) SettingsService {
	return &settingsService{
		settingRepo: settingRepo,
		validate:    validator.New(),
	}
}

func sectionTarget(settings *model.Settings, section model.SettingsSection) interface{} {
	switch section {
	case model.SectionStoreInfo:
		return &settings.StoreInfo
	case model.SectionDeliveryCharges:
		return &settings.DeliveryCharges
	case model.SectionMetaPixel:
		return &settings.MetaPixel
	case model.SectionPolicies:
		return &settings.Policies
	case model.SectionHomepageContent:
		return &settings.HomepageContent
	}
	return nil
}

func (s *settingsService) Load() (model.Settings, error) {
	settings := model.DefaultSettings()

	rows, err := s.settingRepo.FindAll()
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}

	for _, row := range rows {
		target := sectionTarget(&settings, model.SettingsSection(row.Key))
		if target == nil {
			continue
		}
		if err := json.Unmarshal([]byte(row.Value), target); err != nil {
			logger.Warn("Stored settings section unreadable, using defaults", map[string]interface{}{
				"section": row.Key,
				"error":   err.Error(),
			})
			defaults := model.DefaultSettings()
			restore(&settings, &defaults, model.SettingsSection(row.Key))
		}
	}
	normalizeHomepage(&settings.HomepageContent)
	return settings, nil
}

// restore copies one section from src into dst.
func restore(dst, src *model.Settings, section model.SettingsSection) {
	switch section {
	case model.SectionStoreInfo:
		dst.StoreInfo = src.StoreInfo
	case model.SectionDeliveryCharges:
		dst.DeliveryCharges = src.DeliveryCharges
	case model.SectionMetaPixel:
		dst.MetaPixel = src.MetaPixel
	case model.SectionPolicies:
		dst.Policies = src.Policies
	case model.SectionHomepageContent:
		dst.HomepageContent = src.HomepageContent
	}
}

func normalizeHomepage(h *model.HomepageContent) {
	if h.HeroSlides == nil {
		h.HeroSlides = []model.HeroSlide{}
	}
	if h.Testimonials == nil {
		h.Testimonials = []model.Testimonial{}
	}
	for i := range h.HeroSlides {
		if h.HeroSlides[i].ID == "" {
			h.HeroSlides[i].ID = strconv.Itoa(i + 1)
		}
	}
	for i := range h.Testimonials {
		if h.Testimonials[i].ID == "" {
			h.Testimonials[i].ID = strconv.Itoa(i + 1)
		}
	}
}

func (s *settingsService) UpdateSection(section model.SettingsSection, raw []byte) (model.Settings, error) {
	if !section.Valid() {
		return model.Settings{}, ErrUnknownSettingsSection
	}

	var fresh model.Settings
	target := sectionTarget(&fresh, section)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.validate.Struct(target); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if section == model.SectionMetaPixel {
		if err := s.validate.Var(fresh.MetaPixel.PixelID, "omitempty,numeric"); err != nil {
			return model.Settings{}, fmt.Errorf("%w: pixel_id must be numeric", ErrInvalidSettings)
		}
	}
	if section == model.SectionHomepageContent {
		normalizeHomepage(&fresh.HomepageContent)
	}

	value, err := json.Marshal(target)
	if err != nil {
		return model.Settings{}, err
	}
	if err := s.settingRepo.Upsert(string(section), string(value)); err != nil {
		return model.Settings{}, fmt.Errorf("failed to save %s: %w", section, err)
	}

	logger.Info("Settings section updated", map[string]interface{}{
		"section": section,
	})
	return s.Load()
}
