package domain

// Onboarding answer vocabularies. The store layer accepts anything; the
// step screens what it requires before navigation.
const (
	GenderFemale    = "female"
	GenderMale      = "male"
	GenderNonBinary = "non-binary"
)

// Bundle upsell decisions made on the post-payment screens.
const (
	UpsellUndecided = ""
	UpsellAccepted  = "accepted"
	UpsellDeclined  = "declined"
)

// MaxGoals caps the goal multi-select. Toggling a fourth goal on is a no-op.
const MaxGoals = 3

// Answers is the full onboarding answer set, persisted as one record per
// visitor. Date and time fields default to renderable picker values rather
// than empty strings so the widgets always have something to show.
type Answers struct {
	VisitorID          string   `json:"visitor_id" dynamodbav:"visitor_id"`
	Gender             string   `json:"gender" dynamodbav:"gender"`
	BirthMonth         string   `json:"birth_month" dynamodbav:"birth_month"`
	BirthDay           string   `json:"birth_day" dynamodbav:"birth_day"`
	BirthYear          string   `json:"birth_year" dynamodbav:"birth_year"`
	BirthHour          string   `json:"birth_hour" dynamodbav:"birth_hour"`
	BirthMinute        string   `json:"birth_minute" dynamodbav:"birth_minute"`
	BirthPeriod        string   `json:"birth_period" dynamodbav:"birth_period"` // "AM" | "PM"
	KnowsBirthTime     bool     `json:"knows_birth_time" dynamodbav:"knows_birth_time"`
	BirthPlace         string   `json:"birth_place" dynamodbav:"birth_place"`
	RelationshipStatus string   `json:"relationship_status" dynamodbav:"relationship_status"`
	Goals              []string `json:"goals" dynamodbav:"goals"`
	ColorPreference    string   `json:"color_preference" dynamodbav:"color_preference"`
	ElementPreference  string   `json:"element_preference" dynamodbav:"element_preference"`
	UpsellChoice       string   `json:"upsell_choice" dynamodbav:"upsell_choice"`
	SunSign            string   `json:"sun_sign" dynamodbav:"sun_sign"`
	MoonSign           string   `json:"moon_sign" dynamodbav:"moon_sign"`
	Ascendant          string   `json:"ascendant" dynamodbav:"ascendant"`
}

// DefaultAnswers returns the documented defaults for a fresh visitor.
func DefaultAnswers(visitorID string) Answers {
	return Answers{
		VisitorID:      visitorID,
		BirthMonth:     "January",
		BirthDay:       "1",
		BirthYear:      "2000",
		BirthHour:      "12",
		BirthMinute:    "00",
		BirthPeriod:    "AM",
		KnowsBirthTime: true,
		Goals:          []string{},
	}
}

// The transition functions below are pure: each returns a copy with only
// its own field group replaced. Persistence is the caller's concern.

func (a Answers) SetGender(gender string) Answers {
	a.Gender = gender
	return a
}

func (a Answers) SetBirthDate(month, day, year string) Answers {
	a.BirthMonth, a.BirthDay, a.BirthYear = month, day, year
	return a
}

func (a Answers) SetBirthTime(hour, minute, period string) Answers {
	a.BirthHour, a.BirthMinute, a.BirthPeriod = hour, minute, period
	return a
}

func (a Answers) SetBirthPlace(place string) Answers {
	a.BirthPlace = place
	return a
}

func (a Answers) SetKnowsBirthTime(knows bool) Answers {
	a.KnowsBirthTime = knows
	return a
}

func (a Answers) SetRelationshipStatus(status string) Answers {
	a.RelationshipStatus = status
	return a
}

// ToggleGoal adds the goal when absent and removes it when present.
// Adding beyond MaxGoals leaves the list unchanged.
func (a Answers) ToggleGoal(goal string) Answers {
	for i, g := range a.Goals {
		if g == goal {
			goals := make([]string, 0, len(a.Goals)-1)
			goals = append(goals, a.Goals[:i]...)
			goals = append(goals, a.Goals[i+1:]...)
			a.Goals = goals
			return a
		}
	}
	if len(a.Goals) >= MaxGoals {
		return a
	}
	goals := make([]string, len(a.Goals), len(a.Goals)+1)
	copy(goals, a.Goals)
	a.Goals = append(goals, goal)
	return a
}

func (a Answers) SetUpsellChoice(choice string) Answers {
	a.UpsellChoice = choice
	return a
}

func (a Answers) SetColorPreference(color string) Answers {
	a.ColorPreference = color
	return a
}

func (a Answers) SetElementPreference(element string) Answers {
	a.ElementPreference = element
	return a
}

// SetSigns records the computed sun/moon/ascendant signs.
func (a Answers) SetSigns(sun, moon, ascendant string) Answers {
	a.SunSign, a.MoonSign, a.Ascendant = sun, moon, ascendant
	return a
}
