package models

// Team is one KBO club
type Team struct {
	// Code is the wire value used in filters and profiles
	Code string

	// Name is the display name
	Name string
}

// Stadium is one KBO ballpark
type Stadium struct {
	// Code is the wire value
	Code string

	// Name is the display name
	Name string
}

// Teams lists the ten KBO clubs
var Teams = []Team{
	{Code: "LG", Name: "LG Twins"},
	{Code: "DOOSAN", Name: "Doosan Bears"},
	{Code: "KT", Name: "KT Wiz"},
	{Code: "SSG", Name: "SSG Landers"},
	{Code: "NC", Name: "NC Dinos"},
	{Code: "KIWOOM", Name: "Kiwoom Heroes"},
	{Code: "KIA", Name: "KIA Tigers"},
	{Code: "LOTTE", Name: "Lotte Giants"},
	{Code: "SAMSUNG", Name: "Samsung Lions"},
	{Code: "HANWHA", Name: "Hanwha Eagles"},
}

// Stadiums lists the KBO ballparks
var Stadiums = []Stadium{
	{Code: "JAMSIL", Name: "Jamsil Baseball Stadium"},
	{Code: "GOCHEOK", Name: "Gocheok Sky Dome"},
	{Code: "SUWON", Name: "Suwon KT Wiz Park"},
	{Code: "INCHEON", Name: "Incheon SSG Landers Field"},
	{Code: "DAEJEON", Name: "Daejeon Hanwha Life Eagles Park"},
	{Code: "GWANGJU", Name: "Gwangju-Kia Champions Field"},
	{Code: "DAEGU", Name: "Daegu Samsung Lions Park"},
	{Code: "BUSAN", Name: "Sajik Baseball Stadium"},
	{Code: "CHANGWON", Name: "Changwon NC Park"},
}

// ValidTeamCode reports whether code names a KBO club
func ValidTeamCode(code string) bool {
	for _, t := range Teams {
		if t.Code == code {
			return true
		}
	}
	return false
}

// ValidStadiumCode reports whether code names a KBO ballpark
func ValidStadiumCode(code string) bool {
	for _, s := range Stadiums {
		if s.Code == code {
			return true
		}
	}
	return false
}
