package models

import (
	"time"
)

type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

type TimeClass string

const (
	TimeClassBullet    TimeClass = "bullet"
	TimeClassBlitz     TimeClass = "blitz"
	TimeClassRapid     TimeClass = "rapid"
	TimeClassClassical TimeClass = "classical"
)

type Termination string

const (
	TerminationCheckmate     Termination = "checkmate"
	TerminationResignation   Termination = "resignation"
	TerminationTimeout       Termination = "timeout"
	TerminationDrawAgreement Termination = "draw-agreement"
	TerminationAbandoned     Termination = "abandoned"
	TerminationOther         Termination = "other"
)

// GameRecord is one finished game normalized to the perspective of a
// tracked account. Result, ratings and color all refer to that account,
// never to White/Black as written in the PGN.
type GameRecord struct {
	ID             int64       `json:"id,omitempty"`
	Account        string      `json:"account"`
	Timestamp      time.Time   `json:"timestamp"`
	Color          Color       `json:"color"`
	Result         Result      `json:"result"`
	OwnRating      int         `json:"own_rating"`
	OpponentRating int         `json:"opponent_rating"`
	RatingChange   int         `json:"rating_change"`
	ECO            string      `json:"eco,omitempty"`
	Opening        string      `json:"opening,omitempty"`
	Variation      string      `json:"variation,omitempty"`
	TimeControl    string      `json:"time_control,omitempty"`
	TimeClass      TimeClass   `json:"time_class"`
	BaseTime       int         `json:"base_time"`
	Increment      int         `json:"increment"`
	MoveCount      int         `json:"move_count"`
	Termination    Termination `json:"termination"`
	Event          string      `json:"event,omitempty"`
	Site           string      `json:"site,omitempty"`
}

// RatingDiff is opponent rating minus own rating; positive means the
// opponent was stronger.
func (r GameRecord) RatingDiff() int {
	return r.OpponentRating - r.OwnRating
}

type RecordFilter struct {
	Account   string    `json:"account,omitempty"`
	From      time.Time `json:"from,omitempty"`
	To        time.Time `json:"to,omitempty"`
	TimeClass TimeClass `json:"time_class,omitempty"`
	Result    Result    `json:"result,omitempty"`
	Opening   string    `json:"opening,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Offset    int       `json:"offset,omitempty"`
}

type ImportResult struct {
	TotalGames     int      `json:"total_games"`
	ImportedGames  int      `json:"imported_games"`
	SkippedGames   int      `json:"skipped_games"`
	FailedGames    int      `json:"failed_games"`
	Errors         []string `json:"errors,omitempty"`
	ProcessingTime float64  `json:"processing_time_seconds"`
}
