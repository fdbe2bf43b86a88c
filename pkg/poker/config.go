package poker

import (
	"fmt"
	"time"
)

// TableConfig carries the game parameters of one table. The core treats it
// as read-only.
type TableConfig struct {
	ID         string
	GameType   GameType
	MaxPlayers int

	SmallBlind int64
	BigBlind   int64
	MinBuyin   int64
	MaxBuyin   int64

	TimeToAct     time.Duration
	AllowStraddle bool

	NumberTimeBanks   int32
	TimeBankDuration  time.Duration
	TimeBankReplenish time.Duration
}

// Validate checks the config for values the engine cannot run with.
func (c *TableConfig) Validate() error {
	if c.GameType != GameTypeNLHE && c.GameType != GameTypePLO {
		return fmt.Errorf("unsupported game type %q", c.GameType)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > 10 {
		return fmt.Errorf("max players %d outside [2, 10]", c.MaxPlayers)
	}
	if c.SmallBlind <= 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind {
		return fmt.Errorf("invalid blinds %d/%d", c.SmallBlind, c.BigBlind)
	}
	if c.MinBuyin <= 0 || c.MaxBuyin < c.MinBuyin {
		return fmt.Errorf("invalid buyin range %d-%d", c.MinBuyin, c.MaxBuyin)
	}
	if c.TimeToAct <= 0 {
		return fmt.Errorf("time to act must be positive")
	}
	return nil
}
