package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// ProfileRegistry serves named column profiles, one ini section per profile:
//
//	[hospital-b]
//	identifier = patient_id
//	admission  = admitted_on
//	required   = patient_id, admitted_on, name
type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (domain.ColumnProfile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, domain.NewConfigurationError("load profiles", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (domain.ColumnProfile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.ColumnProfile{}, domain.NewConfigurationError("load profiles", fmt.Errorf("profile %s not found", name))
	}

	profile := domain.ColumnProfile{
		Name:             name,
		IdentifierColumn: section.Key("identifier").String(),
		BirthColumn:      section.Key("birth").String(),
		AdmissionColumn:  section.Key("admission").String(),
		DischargeColumn:  section.Key("discharge").String(),
		FilterColumn:     section.Key("filter").String(),
	}
	for _, col := range section.Key("required").Strings(",") {
		if col = strings.TrimSpace(col); col != "" {
			profile.Required = append(profile.Required, col)
		}
	}
	return profile, nil
}
