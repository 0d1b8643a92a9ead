package stream

import (
	"github.com/louisbranch/racesim/internal/services/race/app"
)

// frameMessage is the JSON form of one frame.
type frameMessage struct {
	RaceID       string               `json:"race_id"`
	Name         string               `json:"name"`
	Distance     float64              `json:"distance"`
	Tick         int                  `json:"tick"`
	Elapsed      float64              `json:"elapsed"`
	Phase        string               `json:"phase"`
	State        string               `json:"state"`
	Finished     bool                 `json:"finished"`
	Participants []participantMessage `json:"participants"`
}

type participantMessage struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Gate       int      `json:"gate"`
	Style      string   `json:"style"`
	Rank       int      `json:"rank"`
	Distance   float64  `json:"distance"`
	Speed      float64  `json:"speed"`
	HP         float64  `json:"hp"`
	HPFraction float64  `json:"hp_fraction"`
	Fatigue    float64  `json:"fatigue"`
	Lane       float64  `json:"lane"`
	Mode       string   `json:"mode"`
	Blocked    bool     `json:"blocked,omitempty"`
	Rushing    bool     `json:"rushing,omitempty"`
	Surging    bool     `json:"surging,omitempty"`
	Finished   bool     `json:"finished,omitempty"`
	FinishTime float64  `json:"finish_time,omitempty"`
	DNF        bool     `json:"dnf,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Activated  []string `json:"activated,omitempty"`
}

func newFrameMessage(f app.Frame) frameMessage {
	s := f.Snapshot
	msg := frameMessage{
		RaceID:       f.RaceID,
		Name:         f.Name,
		Distance:     f.Distance,
		Tick:         s.Tick,
		Elapsed:      s.Elapsed,
		Phase:        s.Phase.String(),
		State:        s.State.String(),
		Finished:     s.RaceFinished,
		Participants: make([]participantMessage, 0, len(s.Participants)),
	}
	for _, p := range s.Participants {
		msg.Participants = append(msg.Participants, participantMessage{
			ID:         int(p.ID),
			Name:       p.Name,
			Gate:       p.Gate,
			Style:      p.Style.String(),
			Rank:       p.Rank,
			Distance:   p.Distance,
			Speed:      p.Speed,
			HP:         p.HP,
			HPFraction: p.HPFraction,
			Fatigue:    p.Fatigue,
			Lane:       p.Lane,
			Mode:       p.Mode.String(),
			Blocked:    p.FrontBlocked,
			Rushing:    p.Rushing,
			Surging:    p.Surging,
			Finished:   p.Finished,
			FinishTime: p.FinishTime,
			DNF:        p.DNF,
			Skills:     p.ActiveSkills,
			Activated:  p.Activated,
		})
	}
	return msg
}
