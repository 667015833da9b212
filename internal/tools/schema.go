// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

// Schema declares a tool to a tool-calling model: its name, what it does,
// its JSON-schema parameters, and what it returns.
type Schema struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
	Returns     Property   `json:"returns"`
}

// Parameters is the JSON-schema object describing a tool's arguments.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property is one JSON-schema property.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schemas returns the declarations of every canonical tool, in Names order.
func Schemas() []Schema {
	return []Schema{
		{
			Name:        string(ExtractInfo),
			Description: "Extracts and returns the metadata of a specific paper if it has been previously saved.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]Property{
					"paper_id": {
						Type:        "string",
						Description: "The entry_id of the paper to search for.",
					},
				},
				Required: []string{"paper_id"},
			},
			Returns: Property{
				Type:        "string",
				Description: "A JSON string containing the paper's metadata if found, otherwise a message indicating the paper was not found.",
			},
		},
		{
			Name:        string(SearchPapers),
			Description: "Searches arXiv for papers related to a specific topic and stores their metadata.",
			Parameters: Parameters{
				Type: "object",
				Properties: map[string]Property{
					"topic": {
						Type:        "string",
						Description: "The topic to search for on arXiv (e.g., 'Quantum Computing').",
					},
					"max_results": {
						Type:        "integer",
						Description: "The maximum number of search results to fetch from arXiv. Defaults to 5.",
					},
				},
				Required: []string{"topic"},
			},
			Returns: Property{
				Type:        "array",
				Items:       &Property{Type: "string"},
				Description: "A list of paper entry_ids (unique identifiers from arXiv) found in the current search.",
			},
		},
	}
}
