package workflow

// BuiltinSpecs returns the workflows shipped with the service. Each is pure
// data — the engine supplies the only control flow.
func BuiltinSpecs() []Spec {
	return []Spec{
		{
			Name:        "deal_summary",
			Description: "Summarize a CRM deal into a new document, with stakeholders when available.",
			Steps: []StepSpec{
				{
					Name:     "fetch_deal",
					Tool:     "crm_deal_lookup",
					Critical: true,
					Args: map[string]any{
						"deal_id": "$input.deal_id",
					},
				},
				{
					// Stakeholders enrich the summary but must not block it.
					Name: "fetch_stakeholders",
					Tool: "crm_contacts_search",
					Args: map[string]any{
						"query": "$steps.fetch_deal.company",
					},
				},
				{
					Name:     "create_document",
					Tool:     "document_create",
					Critical: true,
					Args: map[string]any{
						"title":   "$steps.fetch_deal.title",
						"content": "$steps.fetch_deal.summary",
					},
				},
			},
			Output: map[string]any{
				"document_id":  "$steps.create_document.id",
				"document_url": "$steps.create_document.url",
				"deal_title":   "$steps.fetch_deal.title",
			},
		},
		{
			Name:        "schedule_followup",
			Description: "Parse a natural-language date and create a follow-up calendar event.",
			Steps: []StepSpec{
				{
					Name:     "parse_date",
					Tool:     "parse_date",
					Critical: true,
					Args: map[string]any{
						"expression": "$input.when",
					},
				},
				{
					// Availability is advisory; a calendar read failure should
					// not block creating the event.
					Name: "check_availability",
					Tool: "calendar_list_events",
					Args: map[string]any{
						"date": "$steps.parse_date.date",
					},
				},
				{
					Name:     "create_event",
					Tool:     "calendar_create_event",
					Critical: true,
					Args: map[string]any{
						"title":     "$input.title",
						"date":      "$steps.parse_date.date",
						"attendees": "$input.attendees",
					},
				},
			},
			Output: map[string]any{
				"event_id":   "$steps.create_event.id",
				"event_link": "$steps.create_event.html_link",
				"date":       "$steps.parse_date.date",
			},
		},
	}
}
