package director

import (
	"time"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
	"github.com/malexanderboyd/godr4ft/internal/draft"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

// syncTimer arms the pick timer for the current standard pick round, once.
// Only standard drafts are timed.
func (s *Session) syncTimer() {
	st, ok := s.draft.(*draft.Standard)
	if !ok {
		return
	}
	key := [2]int{st.BoosterNumber(), st.PickNumber()}
	if s.stopTimer != nil && key == s.timerKey {
		return
	}
	s.cancelTimer()
	d := game.PickTime(s.Options.PickTimer, st.PickNumber())
	if d == 0 {
		return
	}
	s.timerKey = key
	s.timerToken++
	token, gen := s.timerToken, s.generation
	s.stopTimer = s.hub.AfterFunc(s.ID, d, func(cur *Session) {
		cur.pickTimeout(gen, token)
	})

	countdown := models.NewMessage(models.Timer, models.TimerPayload{Countdown: int(d / time.Second)})
	for _, p := range s.players {
		if !s.botControlled(p) {
			s.hub.Send(p, countdown)
		}
	}
}

func (s *Session) cancelTimer() {
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

// pickTimeout force picks for every human still owing a pick. A timer from
// an earlier round or draft does nothing.
func (s *Session) pickTimeout(gen, token int) {
	if s.draft == nil || gen != s.generation || token != s.timerToken {
		return
	}
	s.stopTimer = nil
	st, ok := s.draft.(*draft.Standard)
	if !ok {
		return
	}
	logger := internal.GetLogger()
	for _, p := range st.Pending() {
		sel, ok := s.bots[p].ChooseFor(st, p)
		if !ok {
			continue
		}
		res, err := st.Pick(p, sel)
		if err != nil {
			logger.Errorw("forced pick failed", "session", s.ID, "user", p, "error", err)
			continue
		}
		logger.Infow("pick timer expired, picked for player", "session", s.ID, "user", p)
		s.record(p, sel, res)
	}
	if err := s.advance(); err != nil {
		logger.Errorw("cannot advance after forced picks", "session", s.ID, "error", err)
	}
}
