package catalog_repo

import (
	"plantops/internal/domain/catalogs/machine"
	"plantops/internal/infrastructure/storage/postgres"
)

const machineTable = "cat_machines"

// MachineRepo implements machine.Repository.
type MachineRepo struct {
	*BaseCatalogRepo[*machine.Machine]
}

// NewMachineRepo creates a new machine repository.
func NewMachineRepo() *MachineRepo {
	return &MachineRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			machineTable,
			postgres.ExtractDBColumns[machine.Machine](),
			func() *machine.Machine { return &machine.Machine{} },
		),
	}
}
