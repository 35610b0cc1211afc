package registration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"elite-gym/internal/catalog"
)

// ErrMissingField is matched by validation errors for blank required fields.
var ErrMissingField = errors.New("required field missing")

// ValidationError lists the blank required fields, by JSON name.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrMissingField }

// Form is the registration data typed by the visitor. The age is never
// stored; it is derived from BirthDate whenever it is needed.
type Form struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date"`
	NationalID string `json:"national_id"`
}

// FormPatch carries a partial update; nil fields are left untouched.
type FormPatch struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	BirthDate  *string `json:"birth_date"`
	NationalID *string `json:"national_id"`
}

// Apply copies the set fields of p into f.
func (p FormPatch) Apply(f *Form) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.FirstName, p.FirstName)
	set(&f.LastName, p.LastName)
	set(&f.Email, p.Email)
	set(&f.Phone, p.Phone)
	set(&f.BirthDate, p.BirthDate)
	set(&f.NationalID, p.NationalID)
}

// AgeLabel is the derived age shown next to the birth date.
func (f Form) AgeLabel(now time.Time) string {
	return DeriveAgeLabel(f.BirthDate, now)
}

// Validate checks that every field is filled in. Formats are not checked.
func (f Form) Validate() error {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("first_name", f.FirstName)
	check("last_name", f.LastName)
	check("email", f.Email)
	check("phone", f.Phone)
	check("birth_date", f.BirthDate)
	check("national_id", f.NationalID)
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Text formats the registration as the WhatsApp message sent to the gym.
func (f Form) Text(plan catalog.Plan, now time.Time) string {
	return strings.Join([]string{
		"🏋️ *Nuevo Miembro — Elite Gym*",
		"",
		fmt.Sprintf("👤 *Nombre:* %s %s", f.FirstName, f.LastName),
		fmt.Sprintf("📧 *Email:* %s", f.Email),
		fmt.Sprintf("📞 *Teléfono:* %s", f.Phone),
		fmt.Sprintf("🎂 *Fecha de nacimiento:* %s", f.BirthDate),
		fmt.Sprintf("📅 *Edad:* %s", f.AgeLabel(now)),
		fmt.Sprintf("🪪 *Cédula:* %s", f.NationalID),
		fmt.Sprintf("⭐ *Plan:* %s (%s)", plan.Name, plan.PriceLabel()),
		"",
		"_Registro enviado desde el sitio web de Elite Gym._",
	}, "\n")
}
