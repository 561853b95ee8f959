package dto

import (
	"plantops/internal/core/entity"
	"plantops/internal/domain/catalogs/company"
)

// ValuationConfigDTO carries the per-class costing methods.
type ValuationConfigDTO struct {
	RawMethod      string `json:"rawMethod"`
	FinishedMethod string `json:"finishedMethod"`
	WIPMethod      string `json:"wipMethod"`
}

// CreateCompanyRequest is the DTO for creating a company.
type CreateCompanyRequest struct {
	Code            string              `json:"code"`
	Name            string              `json:"name" binding:"required"`
	FullName        *string             `json:"fullName"`
	TaxID           *string             `json:"taxId"`
	ValuationConfig *ValuationConfigDTO `json:"valuationConfig"`
	PostingRules    []string            `json:"postingRules"`
	IsDefault       bool                `json:"isDefault"`
}

func (r CreateCompanyRequest) ToEntity() *company.Company {
	org := company.NewCompany(r.Code, r.Name)
	org.FullName = r.FullName
	org.TaxID = r.TaxID
	if r.ValuationConfig != nil {
		org.ValuationConfig = company.ValuationConfig{
			RawMethod:      company.ValuationMethod(r.ValuationConfig.RawMethod),
			FinishedMethod: company.ValuationMethod(r.ValuationConfig.FinishedMethod),
			WIPMethod:      company.ValuationMethod(r.ValuationConfig.WIPMethod),
		}
	}
	org.PostingRules = entity.StringSlice(r.PostingRules)
	org.IsDefault = r.IsDefault
	return org
}

// UpdateCompanyRequest is the DTO for updating a company.
type UpdateCompanyRequest struct {
	Code            string              `json:"code"`
	Name            string              `json:"name" binding:"required"`
	FullName        *string             `json:"fullName"`
	TaxID           *string             `json:"taxId"`
	ValuationConfig *ValuationConfigDTO `json:"valuationConfig"`
	PostingRules    []string            `json:"postingRules"`
	IsDefault       bool                `json:"isDefault"`
	Version         int                 `json:"version" binding:"required"`
}

func (r UpdateCompanyRequest) ApplyTo(org *company.Company) {
	org.Code = r.Code
	org.Name = r.Name
	org.FullName = r.FullName
	org.TaxID = r.TaxID
	if r.ValuationConfig != nil {
		org.ValuationConfig = company.ValuationConfig{
			RawMethod:      company.ValuationMethod(r.ValuationConfig.RawMethod),
			FinishedMethod: company.ValuationMethod(r.ValuationConfig.FinishedMethod),
			WIPMethod:      company.ValuationMethod(r.ValuationConfig.WIPMethod),
		}
	}
	org.PostingRules = entity.StringSlice(r.PostingRules)
	org.IsDefault = r.IsDefault
	org.Version = r.Version
}

// CompanyResponse is the DTO for returning company data.
type CompanyResponse struct {
	ID              string             `json:"id"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	FullName        *string            `json:"fullName,omitempty"`
	TaxID           *string            `json:"taxId,omitempty"`
	ValuationConfig ValuationConfigDTO `json:"valuationConfig"`
	PostingRules    []string           `json:"postingRules,omitempty"`
	IsDefault       bool               `json:"isDefault"`
	DeletionMark    bool               `json:"deletionMark"`
	Version         int                `json:"version"`
}

func FromCompany(org *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:       org.ID.String(),
		Code:     org.Code,
		Name:     org.Name,
		FullName: org.FullName,
		TaxID:    org.TaxID,
		ValuationConfig: ValuationConfigDTO{
			RawMethod:      string(org.RawMethod),
			FinishedMethod: string(org.FinishedMethod),
			WIPMethod:      string(org.WIPMethod),
		},
		PostingRules: []string(org.PostingRules),
		IsDefault:    org.IsDefault,
		DeletionMark: org.DeletionMark,
		Version:      org.Version,
	}
}
