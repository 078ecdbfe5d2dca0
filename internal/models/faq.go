package models

// FAQCategory groups the suggested questions shown in the widget sidebar.
type FAQCategory struct {
	Title     string   `yaml:"title"`
	Icon      string   `yaml:"icon"`
	Questions []string `yaml:"questions"`
}

// DefaultFAQ returns the stock sidebar categories used when the configuration does not
// override them.
func DefaultFAQ() []FAQCategory {
	return []FAQCategory{
		{
			Title: "Matrícula",
			Icon:  "📋",
			Questions: []string{
				"¿Cuándo es el período de matrícula ordinaria 2026?",
				"¿Cómo accedo al Portal de Matrícula?",
				"¿Qué cursos debo matricular este ciclo?",
				"¿Puedo modificar mi matrícula después de inscribirme?",
			},
		},
		{
			Title: "Pagos",
			Icon:  "💳",
			Questions: []string{
				"¿Cuál es el monto de la matrícula?",
				"¿Qué métodos de pago están disponibles?",
				"¿Hay descuentos por pronto pago?",
				"¿Cómo solicito fraccionamiento de pago?",
			},
		},
		{
			Title: "Trámites Académicos",
			Icon:  "📄",
			Questions: []string{
				"¿Cómo solicito una constancia de matrícula?",
				"¿Cuál es el proceso para el retiro de curso?",
				"¿Cómo solicito una licencia de estudios?",
				"¿Dónde descargo mi récord académico?",
			},
		},
		{
			Title: "Servicios Universitarios",
			Icon:  "🏫",
			Questions: []string{
				"¿Cómo accedo a la biblioteca virtual?",
				"¿Qué servicios ofrece bienestar universitario?",
				"¿Cómo solicito apoyo psicológico?",
				"¿Dónde encuentro información sobre becas?",
			},
		},
	}
}
