// Package collection implements the generic JSON-backed resource collection:
// one Definition per resource configures required/allowed fields, secondary
// lookups and caller-visible messages; one Service per resource owns the
// records and serializes every mutation to its Repository.
package collection

// Record is one resource instance. Field values are whatever JSON the client
// submitted (strings in practice); "id" is attached on creation and never
// reassigned.
type Record map[string]interface{}

// IDField is the reserved identifier key; it is always allowed on payloads and
// always overwritten by the service.
const IDField = "id"

func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Definition configures one resource collection.
type Definition struct {
	Name     string // URL segment and backing file name
	Label    string // human label used in validation messages
	NotFound string // caller-visible point-lookup miss message
	Required []string
	Optional []string
	Lookups  []string // fields exposed as secondary lookups
}

// allowed returns the full allowed-field set: Required ∪ Optional ∪ {id}.
func (d Definition) allowed() map[string]struct{} {
	fields := make(map[string]struct{}, len(d.Required)+len(d.Optional)+1)
	for _, f := range d.Required {
		fields[f] = struct{}{}
	}
	for _, f := range d.Optional {
		fields[f] = struct{}{}
	}
	fields[IDField] = struct{}{}
	return fields
}

// The five school-office resources.
var (
	Students = Definition{
		Name:     "students",
		Label:    "Estudante",
		NotFound: "Estudante não encontrado",
		Required: []string{"name", "age", "parents", "phone_number", "special_needs", "status"},
		Lookups:  []string{"name"},
	}

	Teachers = Definition{
		Name:     "teachers",
		Label:    "Professor",
		NotFound: "Professor não encontrado",
		Required: []string{"name", "school_subjects", "contact", "phone_number", "status"},
		Lookups:  []string{"name"},
	}

	Users = Definition{
		Name:     "users",
		Label:    "Usuário",
		NotFound: "Usuário não encontrado",
		Required: []string{"name", "email", "password"},
		Lookups:  []string{"name"},
	}

	Appointments = Definition{
		Name:     "appointments",
		Label:    "Consulta",
		NotFound: "Consulta não encontrada",
		Required: []string{"specialty", "comments", "date", "student", "professional"},
		Lookups:  []string{"professional", "date"},
	}

	Events = Definition{
		Name:     "events",
		Label:    "Evento",
		NotFound: "Evento não encontrado",
		Required: []string{"description", "comments", "date"},
		Lookups:  []string{"date"},
	}
)

// Definitions returns every resource definition, in registration order.
func Definitions() []Definition {
	return []Definition{Students, Teachers, Users, Appointments, Events}
}
