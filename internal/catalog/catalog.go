package catalog

import "fmt"

// Dimension is one scored axis of the analyzed communication.
// The raw score range is fixed at [-3, +3] for every dimension.
type Dimension struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Family string `json:"family" yaml:"family"` // delivery, credibility, leadership
}

// Raw score bounds shared by every dimension.
const (
	MinRawScore = -3
	MaxRawScore = 3
)

// DomainProfile names the dimensions that receive double weight when
// aggregating scores for one content category.
type DomainProfile struct {
	Domain             string   `json:"domain" yaml:"domain"`
	PriorityDimensions []string `json:"priority_dimensions" yaml:"priority_dimensions"`
}

// Catalog is the read-only dimension and domain configuration injected into
// the scoring engine. Build one with Default() or load overrides via config.
type Catalog struct {
	Dimensions []Dimension
	Profiles   map[string]DomainProfile
}

// Default returns the product's fixed nine-dimension catalog and the shipped
// domain profiles.
func Default() *Catalog {
	return &Catalog{
		Dimensions: []Dimension{
			{ID: "frame_control", Label: "Frame Control", Family: "delivery"},
			{ID: "composure", Label: "Composure", Family: "delivery"},
			{ID: "audience_command", Label: "Audience Command", Family: "delivery"},
			{ID: "conviction", Label: "Conviction", Family: "credibility"},
			{ID: "expertise_signal", Label: "Expertise Signaling", Family: "credibility"},
			{ID: "status_language", Label: "Status Language", Family: "credibility"},
			{ID: "decisiveness", Label: "Decisiveness", Family: "leadership"},
			{ID: "boundary_setting", Label: "Boundary Setting", Family: "leadership"},
			{ID: "vision_casting", Label: "Vision Casting", Family: "leadership"},
		},
		Profiles: map[string]DomainProfile{
			"sales_message": {
				Domain:             "sales_message",
				PriorityDimensions: []string{"frame_control", "conviction", "status_language"},
			},
			"leadership_update": {
				Domain:             "leadership_update",
				PriorityDimensions: []string{"vision_casting", "decisiveness", "boundary_setting"},
			},
			"cold_outreach": {
				Domain:             "cold_outreach",
				PriorityDimensions: []string{"frame_control", "expertise_signal", "audience_command"},
			},
			"profile_image": {
				Domain:             "profile_image",
				PriorityDimensions: []string{"status_language", "composure", "audience_command"},
			},
			"general": {
				Domain: "general",
			},
		},
	}
}

// HasDimension reports whether id names a dimension in the catalog.
func (c *Catalog) HasDimension(id string) bool {
	for _, d := range c.Dimensions {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Profile returns the domain's profile and whether the domain is known.
// Callers fall back to an empty priority set for unknown domains.
func (c *Catalog) Profile(domain string) (DomainProfile, bool) {
	p, ok := c.Profiles[domain]
	return p, ok
}

// ApplyOverrides replaces priority-dimension sets for the named domains,
// creating profiles for domains the defaults don't ship. Dimension validity
// is checked by Validate, not here.
func (c *Catalog) ApplyOverrides(overrides map[string][]string) {
	for domain, dims := range overrides {
		p := c.Profiles[domain]
		p.Domain = domain
		p.PriorityDimensions = dims
		c.Profiles[domain] = p
	}
}

// Validate checks the configuration invariant: every priority dimension in
// every profile must reference a dimension the catalog defines. A violation
// is a startup error, never a runtime one.
func (c *Catalog) Validate() error {
	if len(c.Dimensions) == 0 {
		return fmt.Errorf("catalog defines no dimensions")
	}
	seen := make(map[string]bool, len(c.Dimensions))
	for _, d := range c.Dimensions {
		if d.ID == "" {
			return fmt.Errorf("dimension with empty id (label %q)", d.Label)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate dimension id %q", d.ID)
		}
		seen[d.ID] = true
	}
	for domain, p := range c.Profiles {
		for _, id := range p.PriorityDimensions {
			if !seen[id] {
				return fmt.Errorf("domain %q priority dimension %q is not in the dimension set", domain, id)
			}
		}
	}
	return nil
}
