package astrology

// Sign is one of the twelve zodiac signs with its display metadata.
type Sign struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Element string `json:"element"`
	Dates   string `json:"dates"`
}

// Signs is the zodiac in order starting at Aries.
var Signs = []Sign{
	{Name: "Aries", Symbol: "♈", Element: "Fire", Dates: "Mar 21 - Apr 19"},
	{Name: "Taurus", Symbol: "♉", Element: "Earth", Dates: "Apr 20 - May 20"},
	{Name: "Gemini", Symbol: "♊", Element: "Air", Dates: "May 21 - Jun 20"},
	{Name: "Cancer", Symbol: "♋", Element: "Water", Dates: "Jun 21 - Jul 22"},
	{Name: "Leo", Symbol: "♌", Element: "Fire", Dates: "Jul 23 - Aug 22"},
	{Name: "Virgo", Symbol: "♍", Element: "Earth", Dates: "Aug 23 - Sep 22"},
	{Name: "Libra", Symbol: "♎", Element: "Air", Dates: "Sep 23 - Oct 22"},
	{Name: "Scorpio", Symbol: "♏", Element: "Water", Dates: "Oct 23 - Nov 21"},
	{Name: "Sagittarius", Symbol: "♐", Element: "Fire", Dates: "Nov 22 - Dec 21"},
	{Name: "Capricorn", Symbol: "♑", Element: "Earth", Dates: "Dec 22 - Jan 19"},
	{Name: "Aquarius", Symbol: "♒", Element: "Air", Dates: "Jan 20 - Feb 18"},
	{Name: "Pisces", Symbol: "♓", Element: "Water", Dates: "Feb 19 - Mar 20"},
}

var monthIndex = map[string]int{
	"January": 0, "February": 1, "March": 2, "April": 3,
	"May": 4, "June": 5, "July": 6, "August": 7,
	"September": 8, "October": 9, "November": 10, "December": 11,
}

// SunSign maps a birth month/day onto its zodiac sign. Every (month, day)
// pair lands on exactly one sign; anything past the Aquarius boundary falls
// through to Pisces.
func SunSign(month string, day int) Sign {
	m := monthIndex[month]

	var idx int
	switch {
	case (m == 2 && day >= 21) || (m == 3 && day <= 19):
		idx = 0 // Aries
	case (m == 3 && day >= 20) || (m == 4 && day <= 20):
		idx = 1
	case (m == 4 && day >= 21) || (m == 5 && day <= 20):
		idx = 2
	case (m == 5 && day >= 21) || (m == 6 && day <= 22):
		idx = 3
	case (m == 6 && day >= 23) || (m == 7 && day <= 22):
		idx = 4
	case (m == 7 && day >= 23) || (m == 8 && day <= 22):
		idx = 5
	case (m == 8 && day >= 23) || (m == 9 && day <= 22):
		idx = 6
	case (m == 9 && day >= 23) || (m == 10 && day <= 21):
		idx = 7
	case (m == 10 && day >= 22) || (m == 11 && day <= 21):
		idx = 8
	case (m == 11 && day >= 22) || (m == 0 && day <= 19):
		idx = 9
	case (m == 0 && day >= 20) || (m == 1 && day <= 18):
		idx = 10
	default:
		idx = 11 // Pisces
	}
	return Signs[idx]
}

// MoonSign is a deterministic hash of the birth date onto the zodiac.
// A real lunar ephemeris is out of scope; the front end only needs a
// stable, plausible assignment per visitor.
func MoonSign(month string, day, year int) Sign {
	return Signs[(year+monthIndex[month]+day)%12]
}

// Ascendant offsets the sun sign by one sign per two hours of birth time.
func Ascendant(month string, day, hour24 int) Sign {
	sunIdx := 0
	sun := SunSign(month, day)
	for i, s := range Signs {
		if s.Name == sun.Name {
			sunIdx = i
			break
		}
	}
	return Signs[(sunIdx+hour24/2)%12]
}
