package roster

const (
	// PremierTeamSize is how many same-team players a premier match needs
	PremierTeamSize = 5
	// ScrimHeadcount is how many players in total a scrim needs
	ScrimHeadcount = 10
)

// DayReport is the readiness of one weekday: premier status per team,
// scrim headcount, and the resolved display values for that day
type DayReport struct {
	Day           Weekday
	TeamACount    int
	TeamBCount    int
	PremierReady  bool
	PremierTeam   Team
	PremierWindow string
	ScrimTotal    int
	ScrimReady    bool
	ScrimDeficit  int
	ScrimSlot     ScrimSlot
	Names         []string
}

// Report covers the whole week, always all seven days in order, so a
// preview never has to guess which days were omitted
type Report struct {
	Days []DayReport
}

// Day returns the report for one weekday
func (report Report) Day(day Weekday) DayReport {
	return report.Days[int(day)]
}

// Readiness computes the weekly report from the current availability and
// configuration. Players without a team count toward the scrim headcount
// but not toward either premier team
func (m *Manager) Readiness(communityID string) Report {
	resolved := m.Resolved(communityID)
	report := Report{Days: make([]DayReport, len(Week))}
	for _, day := range Week {
		records := m.ListAvailableOn(communityID, day)
		dayReport := DayReport{
			Day:           day,
			PremierWindow: resolved.PremierWindowFor(day),
			ScrimSlot:     resolved.ScrimSlotFor(day),
			ScrimTotal:    len(records),
		}
		for _, record := range records {
			dayReport.Names = append(dayReport.Names, record.Name)
			switch record.Team {
			case TeamA:
				dayReport.TeamACount++
			case TeamB:
				dayReport.TeamBCount++
			}
		}
		dayReport.PremierReady = dayReport.TeamACount >= PremierTeamSize || dayReport.TeamBCount >= PremierTeamSize
		dayReport.PremierTeam = premierTeam(dayReport.TeamACount, dayReport.TeamBCount)
		dayReport.ScrimReady = dayReport.ScrimTotal >= ScrimHeadcount
		if deficit := ScrimHeadcount - dayReport.ScrimTotal; deficit > 0 {
			dayReport.ScrimDeficit = deficit
		}
		report.Days[int(day)] = dayReport
	}
	return report
}

// premierTeam picks the qualified team to display, the fuller one when both reach five
func premierTeam(countA, countB int) Team {
	if countA < PremierTeamSize && countB < PremierTeamSize {
		return TeamNone
	}
	if countB > countA {
		return TeamB
	}
	return TeamA
}
