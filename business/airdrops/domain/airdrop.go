// Package domain contains the airdrop types.
package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Status of an airdrop campaign.
type Status string

const (
	StatusActive   Status = "active"
	StatusUpcoming Status = "upcoming"
	StatusEnded    Status = "ended"
)

// Difficulty is how much work claiming takes.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Categories accepted by the backend.
var Categories = []string{"defi", "nft", "gaming", "layer1", "layer2", "social", "other"}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date = api.Date

// Airdrop is a token distribution campaign.
type Airdrop struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Project        string     `json:"project"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	RewardEstimate string     `json:"reward_estimate,omitempty"`
	RewardToken    string     `json:"reward_token,omitempty"`
	Requirements   string     `json:"requirements,omitempty"`
	Steps          string     `json:"steps,omitempty"`
	URL            string     `json:"url,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	Status         Status     `json:"status"`
	Difficulty     Difficulty `json:"difficulty"`
	Deadline       *Date      `json:"deadline,omitempty"`
	StartDate      *Date      `json:"start_date,omitempty"`
	IsVerified     bool       `json:"is_verified"`
	IsFeatured     bool       `json:"is_featured"`
	IsAutoCurated  bool       `json:"is_auto_curated"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DaysLeft is the whole days until the deadline, or -1 without one.
func (a Airdrop) DaysLeft(now time.Time) int {
	if a.Deadline == nil || a.Deadline.IsZero() {
		return -1
	}
	d := int(a.Deadline.Sub(now.Truncate(24*time.Hour)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// AirdropList is the collection envelope.
type AirdropList struct {
	Airdrops []Airdrop `json:"airdrops"`
	Total    int       `json:"total"`
}

// Has reports whether id is in the page.
func (l AirdropList) Has(id string) bool {
	for _, a := range l.Airdrops {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Filter selects a page of airdrops.
type Filter struct {
	Status     Status
	Category   string
	Difficulty Difficulty
	Limit      int
	Offset     int
}

// Values encodes the filter as query parameters.
func (f Filter) Values() url.Values {
	return api.NewParams().
		String("status", string(f.Status)).
		String("category", f.Category).
		String("difficulty", string(f.Difficulty)).
		Int("limit", f.Limit).
		Int("offset", f.Offset).
		Values()
}

// Form is the create payload.
type Form struct {
	Name           string     `json:"name"`
	Project        string     `json:"project"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	RewardEstimate string     `json:"reward_estimate,omitempty"`
	RewardToken    string     `json:"reward_token,omitempty"`
	Requirements   string     `json:"requirements,omitempty"`
	Steps          string     `json:"steps,omitempty"`
	URL            string     `json:"url,omitempty"`
	Status         Status     `json:"status"`
	Difficulty     Difficulty `json:"difficulty"`
	Deadline       *Date      `json:"deadline,omitempty"`
	StartDate      *Date      `json:"start_date,omitempty"`
	IsVerified     bool       `json:"is_verified"`
	IsFeatured     bool       `json:"is_featured"`
}

// NewForm starts a form with the backend defaults.
func NewForm() *Form {
	return &Form{Category: "defi", Status: StatusActive, Difficulty: DifficultyMedium}
}

func (f *Form) SetName(v string) *Form { f.Name = strings.TrimSpace(v); return f }

func (f *Form) SetProject(v string) *Form { f.Project = strings.TrimSpace(v); return f }

func (f *Form) SetDescription(v string) *Form { f.Description = v; return f }

func (f *Form) SetCategory(v string) *Form { f.Category = v; return f }

func (f *Form) SetReward(estimate, token string) *Form {
	f.RewardEstimate, f.RewardToken = estimate, token
	return f
}

func (f *Form) SetRequirements(v string) *Form { f.Requirements = v; return f }

func (f *Form) SetSteps(v string) *Form { f.Steps = v; return f }

func (f *Form) SetURL(v string) *Form { f.URL = v; return f }

func (f *Form) SetStatus(v Status) *Form { f.Status = v; return f }

func (f *Form) SetDifficulty(v Difficulty) *Form { f.Difficulty = v; return f }

func (f *Form) SetDeadline(v time.Time) *Form { f.Deadline = &Date{Time: v}; return f }

func (f *Form) SetStartDate(v time.Time) *Form { f.StartDate = &Date{Time: v}; return f }

func (f *Form) SetVerified(v bool) *Form { f.IsVerified = v; return f }

func (f *Form) SetFeatured(v bool) *Form { f.IsFeatured = v; return f }

// Validate checks required fields.
func (f *Form) Validate() error {
	return validate.New("airdrop").
		NotBlank("name", f.Name).
		NotBlank("project", f.Project).
		OneOf("category", f.Category, Categories...).
		Err()
}

// Patch is a partial update.
type Patch struct {
	Name           *string     `json:"name,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Category       *string     `json:"category,omitempty"`
	RewardEstimate *string     `json:"reward_estimate,omitempty"`
	Requirements   *string     `json:"requirements,omitempty"`
	Steps          *string     `json:"steps,omitempty"`
	URL            *string     `json:"url,omitempty"`
	Status         *Status     `json:"status,omitempty"`
	Difficulty     *Difficulty `json:"difficulty,omitempty"`
	Deadline       *Date       `json:"deadline,omitempty"`
	IsVerified     *bool       `json:"is_verified,omitempty"`
	IsFeatured     *bool       `json:"is_featured,omitempty"`
}

func (p *Patch) SetName(v string) *Patch { p.Name = &v; return p }

func (p *Patch) SetDescription(v string) *Patch { p.Description = &v; return p }

func (p *Patch) SetStatus(v Status) *Patch { p.Status = &v; return p }

func (p *Patch) SetDifficulty(v Difficulty) *Patch { p.Difficulty = &v; return p }

func (p *Patch) SetDeadline(v time.Time) *Patch { p.Deadline = &Date{Time: v}; return p }

func (p *Patch) SetVerified(v bool) *Patch { p.IsVerified = &v; return p }

func (p *Patch) SetFeatured(v bool) *Patch { p.IsFeatured = &v; return p }
