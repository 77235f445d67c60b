package resource

import "sort"

// Lookup collections shared by several pages.
var (
	PatientsLookup = LookupSpec{
		Name:         "pacientes",
		Resource:     "pacientes",
		LabelFields:  []string{"nombre", "apellido"},
		ErrorMessage: "Error al cargar pacientes",
	}
	DoctorsLookup = LookupSpec{
		Name:         "medicos",
		Resource:     "personal",
		LabelFields:  []string{"nombre", "apellido"},
		ErrorMessage: "Error al cargar médicos",
	}
	StaffLookup = LookupSpec{
		Name:         "personal",
		Resource:     "personal",
		LabelFields:  []string{"nombre", "apellido"},
		ErrorMessage: "Error al cargar personal",
	}
	MedicationsLookup = LookupSpec{
		Name:         "medicamentos",
		Resource:     "medicamentos",
		LabelFields:  []string{"nombre"},
		ErrorMessage: "Error al cargar medicamentos",
	}
)

func patientRef() []Field {
	return []Field{
		{Name: "pacienteId", Label: "Paciente", Kind: Reference, Lookup: PatientsLookup.Name, Companion: "pacienteNombre"},
		{Name: "pacienteNombre", Label: "Paciente", Kind: Companion},
	}
}

func doctorRef() []Field {
	return []Field{
		{Name: "medicoId", Label: "Médico", Kind: Reference, Lookup: DoctorsLookup.Name, Companion: "medicoNombre"},
		{Name: "medicoNombre", Label: "Médico", Kind: Companion},
	}
}

func fields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var catalog = []Descriptor{
	{
		Name:  "usuarios",
		Title: "Gestión de Usuarios",
		Fields: []Field{
			{Name: "name", Label: "Nombre", Kind: Text},
			{Name: "email", Label: "Email", Kind: Email},
		},
		Columns: []Column{{"name", "Nombre"}, {"email", "Email"}},
		Messages: Messages{
			Load:   "Error al cargar usuarios",
			Detail: "Error al obtener detalles del usuario",
			Create: "Error al crear usuario",
			Update: "Error al actualizar usuario",
			Delete: "Error al eliminar usuario",
		},
		Capabilities: CapList | CapDelete,
	},
	{
		Name:  "pacientes",
		Title: "Gestión de Pacientes",
		Fields: []Field{
			{Name: "nombre", Label: "Nombre", Kind: Text},
			{Name: "apellido", Label: "Apellido", Kind: Text},
			{Name: "fechaNacimiento", Label: "Fecha de Nacimiento", Kind: Date},
			{Name: "telefono", Label: "Teléfono", Kind: Text},
			{Name: "email", Label: "Email", Kind: Email},
		},
		Columns: []Column{{"nombre", "Nombre"}, {"apellido", "Apellido"}, {"email", "Email"}},
		Messages: Messages{
			Load:   "Error al cargar pacientes",
			Detail: "Error al obtener detalles del paciente",
			Create: "Error al crear paciente",
			Update: "Error al actualizar paciente",
			Delete: "Error al eliminar paciente",
		},
		Capabilities: CapAll,
	},
	{
		Name:  "personal",
		Title: "Gestión de Personal",
		Fields: []Field{
			{Name: "nombre", Label: "Nombre", Kind: Text},
			{Name: "apellido", Label: "Apellido", Kind: Text},
			{Name: "especialidad", Label: "Especialidad", Kind: Text},
			{Name: "email", Label: "Email", Kind: Email},
			{Name: "telefono", Label: "Teléfono", Kind: Text},
		},
		Columns: []Column{{"nombre", "Nombre"}, {"apellido", "Apellido"}, {"especialidad", "Especialidad"}, {"email", "Email"}},
		Messages: Messages{
			Load:   "Error al cargar personal",
			Detail: "Error al obtener detalles del personal",
			Create: "Error al crear personal",
			Update: "Error al actualizar personal",
			Delete: "Error al eliminar personal",
		},
		Capabilities: CapAll,
	},
	{
		Name:  "citas",
		Title: "Gestión de Citas",
		Fields: fields(patientRef(), doctorRef(), []Field{
			{Name: "fecha", Label: "Fecha", Kind: Date},
			{Name: "hora", Label: "Hora", Kind: Time},
			{Name: "motivo", Label: "Motivo", Kind: Text},
			{Name: "estado", Label: "Estado", Kind: Enum, Options: []string{"Programada", "Completada", "Cancelada"}},
		}),
		Columns: []Column{{"pacienteNombre", "Paciente"}, {"medicoNombre", "Médico"}, {"fecha", "Fecha"}, {"hora", "Hora"}, {"estado", "Estado"}},
		Messages: Messages{
			Load:   "Error al cargar citas",
			Detail: "Error al obtener detalles de la cita",
			Create: "Error al crear cita",
			Update: "Error al actualizar cita",
			Delete: "Error al cancelar cita",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{PatientsLookup, DoctorsLookup},
	},
	{
		Name:  "diagnosticos",
		Title: "Gestión de Diagnósticos",
		Fields: fields(patientRef(), doctorRef(), []Field{
			{Name: "fecha", Label: "Fecha", Kind: Date, DefaultToday: true},
			{Name: "descripcion", Label: "Descripción", Kind: Text},
			{Name: "tratamiento", Label: "Tratamiento", Kind: Text},
		}),
		Columns: []Column{{"pacienteNombre", "Paciente"}, {"medicoNombre", "Médico"}, {"fecha", "Fecha"}},
		Messages: Messages{
			Load:   "Error al cargar diagnósticos",
			Detail: "Error al obtener detalles del diagnóstico",
			Create: "Error al crear diagnóstico",
			Update: "Error al actualizar diagnóstico",
			Delete: "Error al eliminar diagnóstico",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{PatientsLookup, DoctorsLookup},
	},
	{
		Name:  "tratamientos",
		Title: "Gestión de Tratamientos",
		Fields: fields(patientRef(), doctorRef(), []Field{
			{Name: "fechaInicio", Label: "Fecha Inicio", Kind: Date, DefaultToday: true},
			{Name: "fechaFin", Label: "Fecha Fin", Kind: Date},
			{Name: "descripcion", Label: "Descripción", Kind: Text},
			{Name: "estado", Label: "Estado", Kind: Enum, Options: []string{"En curso", "Completado", "Cancelado"}},
		}),
		Columns: []Column{{"pacienteNombre", "Paciente"}, {"medicoNombre", "Médico"}, {"fechaInicio", "Fecha Inicio"}, {"estado", "Estado"}},
		Messages: Messages{
			Load:   "Error al cargar tratamientos",
			Detail: "Error al obtener detalles del tratamiento",
			Create: "Error al crear tratamiento",
			Update: "Error al actualizar tratamiento",
			Delete: "Error al eliminar tratamiento",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{PatientsLookup, DoctorsLookup},
	},
	{
		Name:  "medicamentos",
		Title: "Gestión de Medicamentos",
		Fields: []Field{
			{Name: "nombre", Label: "Nombre", Kind: Text},
			{Name: "descripcion", Label: "Descripción", Kind: Text},
			{Name: "dosis", Label: "Dosis", Kind: Text},
			{Name: "efectosSecundarios", Label: "Efectos Secundarios", Kind: Text},
			{Name: "contraindicaciones", Label: "Contraindicaciones", Kind: Text},
		},
		Columns: []Column{{"nombre", "Nombre"}, {"descripcion", "Descripción"}},
		Messages: Messages{
			Load:   "Error al cargar medicamentos",
			Detail: "Error al obtener detalles del medicamento",
			Create: "Error al crear medicamento",
			Update: "Error al actualizar medicamento",
			Delete: "Error al eliminar medicamento",
		},
		Capabilities: CapAll,
	},
	{
		Name:  "inventario",
		Title: "Inventario",
		Fields: []Field{
			{Name: "medicamentoId", Label: "Medicamento", Kind: Reference, Lookup: MedicationsLookup.Name, Companion: "medicamentoNombre"},
			{Name: "medicamentoNombre", Label: "Medicamento", Kind: Companion},
			{Name: "cantidad", Label: "Cantidad", Kind: Number},
			{Name: "fechaCaducidad", Label: "Fecha de Caducidad", Kind: Date},
			{Name: "lote", Label: "Lote", Kind: Text},
		},
		Columns: []Column{{"medicamentoNombre", "Medicamento"}, {"cantidad", "Cantidad"}, {"fechaCaducidad", "Fecha de Caducidad"}, {"lote", "Lote"}},
		Messages: Messages{
			Load:   "Error al cargar inventario",
			Detail: "Error al obtener detalles del inventario",
			Create: "Error al crear registro de inventario",
			Update: "Error al actualizar registro de inventario",
			Delete: "Error al eliminar registro de inventario",
		},
		Capabilities: CapList | CapCreate,
		Lookups:      []LookupSpec{MedicationsLookup},
	},
	{
		Name:  "recetas",
		Title: "Gestión de Recetas",
		Fields: fields(patientRef(), doctorRef(), []Field{
			{Name: "fecha", Label: "Fecha", Kind: Date, DefaultToday: true},
			{Name: "medicamentos", Label: "Medicamentos", Kind: Items, ItemFields: []Field{
				{Name: "id", Label: "Medicamento", Kind: Reference, Lookup: MedicationsLookup.Name, Companion: "nombre"},
				{Name: "nombre", Label: "Medicamento", Kind: Companion},
				{Name: "dosis", Label: "Dosis", Kind: Text},
				{Name: "duracion", Label: "Duración", Kind: Text},
			}},
			{Name: "instrucciones", Label: "Instrucciones", Kind: Text},
		}),
		Columns: []Column{{"pacienteNombre", "Paciente"}, {"medicoNombre", "Médico"}, {"fecha", "Fecha"}},
		Messages: Messages{
			Load:   "Error al cargar recetas",
			Detail: "Error al obtener detalles de la receta",
			Create: "Error al crear receta",
			Update: "Error al actualizar receta",
			Delete: "Error al eliminar receta",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{PatientsLookup, DoctorsLookup, MedicationsLookup},
	},
	{
		Name:  "examenes",
		Title: "Gestión de Exámenes",
		Fields: fields(patientRef(), doctorRef(), []Field{
			{Name: "fecha", Label: "Fecha", Kind: Date, DefaultToday: true},
			{Name: "tipo", Label: "Tipo", Kind: Text},
			{Name: "resultados", Label: "Resultados", Kind: Text},
			{Name: "observaciones", Label: "Observaciones", Kind: Text},
		}),
		Columns: []Column{{"pacienteNombre", "Paciente"}, {"medicoNombre", "Médico"}, {"fecha", "Fecha"}, {"tipo", "Tipo"}},
		Messages: Messages{
			Load:   "Error al cargar exámenes",
			Detail: "Error al obtener detalles del examen",
			Create: "Error al crear examen",
			Update: "Error al actualizar examen",
			Delete: "Error al eliminar examen",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{PatientsLookup, DoctorsLookup},
	},
	{
		Name:  "facturas",
		Title: "Gestión de Facturación",
		Fields: fields(patientRef(), []Field{
			{Name: "fecha", Label: "Fecha", Kind: Date, DefaultToday: true},
			{Name: "monto", Label: "Monto", Kind: Number},
			{Name: "estado", Label: "Estado", Kind: Enum, Options: []string{"Pendiente", "Pagada", "Cancelada"}},
			{Name: "detalles", Label: "Detalles", Kind: Text},
		}),
		Columns: []Column{{"pacienteNombre", "Paciente"}, {"fecha", "Fecha"}, {"monto", "Monto"}, {"estado", "Estado"}},
		Messages: Messages{
			Load:   "Error al cargar facturas",
			Detail: "Error al obtener detalles de la factura",
			Create: "Error al crear factura",
			Update: "Error al actualizar factura",
			Delete: "Error al eliminar factura",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{PatientsLookup},
	},
	{
		Name:  "horarios",
		Title: "Gestión de Horarios",
		Fields: []Field{
			{Name: "personalId", Label: "Personal", Kind: Reference, Lookup: StaffLookup.Name, Companion: "personalNombre"},
			{Name: "personalNombre", Label: "Personal", Kind: Companion},
			{Name: "dia", Label: "Día", Kind: Text, Options: Weekdays},
			{Name: "horaInicio", Label: "Hora Inicio", Kind: Time},
			{Name: "horaFin", Label: "Hora Fin", Kind: Time},
		},
		Columns: []Column{{"personalNombre", "Personal"}, {"dia", "Día"}, {"horaInicio", "Hora Inicio"}, {"horaFin", "Hora Fin"}},
		Messages: Messages{
			Load:   "Error al cargar horarios",
			Detail: "Error al obtener detalles del horario",
			Create: "Error al crear horario",
			Update: "Error al actualizar horario",
			Delete: "Error al eliminar horario",
		},
		Capabilities: CapAll,
		Lookups:      []LookupSpec{StaffLookup},
	},
}

// Weekdays are the values offered by the schedule day picker.
var Weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

var byName = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(catalog))
	for _, d := range catalog {
		m[d.Name] = d
	}
	return m
}()

// Lookup returns the descriptor for a REST path segment such as "citas".
func Lookup(name string) (Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}

// All returns every descriptor in menu order.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the sorted REST path segments.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// MenuItem is one entry of the dashboard home.
type MenuItem struct {
	Title       string
	Description string
	Resources   []string
}

var menu = []MenuItem{
	{"Usuarios", "Gestionar usuarios del sistema", []string{"usuarios"}},
	{"Pacientes", "Administrar información de pacientes", []string{"pacientes"}},
	{"Personal", "Gestionar personal médico", []string{"personal"}},
	{"Citas", "Agendar y gestionar citas médicas", []string{"citas"}},
	{"Diagnósticos", "Registrar y consultar diagnósticos", []string{"diagnosticos"}},
	{"Tratamientos", "Administrar tratamientos médicos", []string{"tratamientos"}},
	{"Medicamentos", "Gestionar inventario de medicamentos", []string{"medicamentos", "inventario"}},
	{"Recetas", "Crear y gestionar recetas médicas", []string{"recetas"}},
	{"Exámenes", "Administrar exámenes médicos", []string{"examenes"}},
	{"Facturación", "Gestionar facturación de servicios", []string{"facturas"}},
	{"Horarios", "Administrar horarios del personal", []string{"horarios"}},
}

// Menu returns the dashboard entries in display order.
func Menu() []MenuItem {
	out := make([]MenuItem, len(menu))
	copy(out, menu)
	return out
}
