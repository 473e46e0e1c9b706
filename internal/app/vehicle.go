package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/modcar/ingreso/internal/prefs"
)

// PromptVehicle asks for the vehicle attributes used to rank part
// suggestions, starting from the last values entered.
func PromptVehicle(current prefs.Vehicle) (prefs.Vehicle, error) {
	v := current
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Marca").
				Placeholder("Toyota").
				Value(&v.Marca),
			huh.NewInput().
				Title("Modelo").
				Placeholder("Yaris").
				Value(&v.Modelo),
			huh.NewInput().
				Title("Año").
				Placeholder("2015").
				Validate(ValidateYear).
				Value(&v.Anio),
			huh.NewInput().
				Title("Motor").
				Placeholder("1.5").
				Value(&v.Motor),
		).Title("Vehículo"),
	).Run()
	if err != nil {
		return current, err
	}

	v.Marca = strings.TrimSpace(v.Marca)
	v.Modelo = strings.TrimSpace(v.Modelo)
	v.Anio = strings.TrimSpace(v.Anio)
	v.Motor = strings.TrimSpace(v.Motor)
	return v, nil
}

const firstModelYear = 1900

// ValidateYear accepts an empty value or a four-digit year no later than next
// year.
func ValidateYear(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 {
		return fmt.Errorf("año inválido: %q", s)
	}
	if latest := time.Now().Year() + 1; year < firstModelYear || year > latest {
		return fmt.Errorf("el año debe estar entre %d y %d", firstModelYear, latest)
	}
	return nil
}
