package handlers

import (
	"plantops/internal/domain/catalogs/machine"
	"plantops/internal/infrastructure/http/v1/dto"
)

// MachineHTTPHandler is an alias to shorten generic signatures.
type MachineHTTPHandler = CatalogHandler[
	*machine.Machine,
	dto.CreateMachineRequest,
	dto.UpdateMachineRequest,
]

// NewMachineHandler wires the generic catalog handler to the machine service.
func NewMachineHandler(
	base *BaseHandler,
	service *machine.Service,
) *MachineHTTPHandler {

	config := CatalogHandlerConfig[
		*machine.Machine,
		dto.CreateMachineRequest,
		dto.UpdateMachineRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "machine",

		MapCreateDTO: func(req dto.CreateMachineRequest) *machine.Machine {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateMachineRequest, existing *machine.Machine) *machine.Machine {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *machine.Machine) any {
			return dto.FromMachine(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
