package services

import (
	"github.com/mroth/weightedrand/v2"
)

// ServicePicker draws one value from a weighted set.
type ServicePicker[T any] struct {
	chooser *weightedrand.Chooser[T, int]
}

func NewServicePicker[T any](choices []weightedrand.Choice[T, int]) (*ServicePicker[T], error) {
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	return &ServicePicker[T]{chooser}, nil
}

func (service *ServicePicker[T]) Pick() T {
	return service.chooser.Pick()
}
