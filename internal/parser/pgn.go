package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"

	"github.com/chdb/chessmetrics/internal/models"
)

var (
	headerRegex  = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)
	moveNumRegex = regexp.MustCompile(`\d+\.(\.\.)?`)
	commentRegex = regexp.MustCompile(`\{[^}]*\}`)
	variantRegex = regexp.MustCompile(`\([^)]*\)`)
	nagRegex     = regexp.MustCompile(`\$\d+`)
	spaceRegex   = regexp.MustCompile(`\s+`)

	errNoTrackedAccount = errors.New("no tracked account in game")
)

// Time-control classification thresholds, in estimated total seconds
// (base time plus forty increments).
const (
	bulletLimit = 180
	blitzLimit  = 600
	rapidLimit  = 1800
)

// Parser normalizes raw PGN text into GameRecords from the perspective
// of one of the tracked accounts. Games involving none of the tracked
// accounts are skipped, not failed.
type Parser struct {
	accounts map[string]bool
}

func New(trackedAccounts []string) *Parser {
	accounts := make(map[string]bool, len(trackedAccounts))
	for _, a := range trackedAccounts {
		a = strings.TrimSpace(a)
		if a != "" {
			accounts[a] = true
		}
	}
	return &Parser{accounts: accounts}
}

type ParseReport struct {
	Total   int
	Parsed  int
	Skipped int
	Failed  int
}

func (p *Parser) ParsePGN(pgnText string) ([]models.GameRecord, ParseReport) {
	games := p.splitGames(pgnText)
	records := make([]models.GameRecord, 0, len(games))
	report := ParseReport{Total: len(games)}

	for _, gameText := range games {
		record, err := p.parseGame(gameText)
		switch {
		case errors.Is(err, errNoTrackedAccount):
			report.Skipped++
		case err != nil:
			report.Failed++
		default:
			records = append(records, record)
			report.Parsed++
		}
	}

	return records, report
}

func (p *Parser) splitGames(pgnText string) []string {
	lines := strings.Split(pgnText, "\n")
	var games []string
	var currentGame strings.Builder
	inGame := false

	for _, line := range lines {
		if strings.HasPrefix(line, "[Event ") {
			if inGame && currentGame.Len() > 0 {
				games = append(games, currentGame.String())
				currentGame.Reset()
			}
			inGame = true
		}
		if inGame {
			currentGame.WriteString(line + "\n")
		}
	}

	if currentGame.Len() > 0 {
		games = append(games, currentGame.String())
	}

	return games
}

func (p *Parser) parseGame(gameText string) (models.GameRecord, error) {
	lines := strings.Split(gameText, "\n")
	headers := make(map[string]string)
	var moveLines []string
	headerSection := true

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(headers) > 0 {
				headerSection = false
			}
			continue
		}

		if headerSection && strings.HasPrefix(line, "[") {
			matches := headerRegex.FindStringSubmatch(line)
			if len(matches) == 3 {
				headers[matches[1]] = matches[2]
			}
		} else if !strings.HasPrefix(line, "[") {
			headerSection = false
			moveLines = append(moveLines, line)
		}
	}

	white := headers["White"]
	black := headers["Black"]
	rawResult := headers["Result"]
	if white == "" || black == "" || rawResult == "" {
		return models.GameRecord{}, errors.New("missing required headers")
	}

	var account string
	var color models.Color
	switch {
	case p.accounts[white]:
		account, color = white, models.ColorWhite
	case p.accounts[black]:
		account, color = black, models.ColorBlack
	default:
		return models.GameRecord{}, errNoTrackedAccount
	}

	record := models.GameRecord{
		Account:     account,
		Color:       color,
		Result:      perspectiveResult(rawResult, color),
		ECO:         headers["ECO"],
		Opening:     headers["Opening"],
		Variation:   headers["Variation"],
		TimeControl: headers["TimeControl"],
		Event:       headers["Event"],
		Site:        headers["Site"],
		Timestamp:   parseTimestamp(headers),
	}

	if color == models.ColorWhite {
		record.OwnRating = safeInt(headers["WhiteElo"])
		record.OpponentRating = safeInt(headers["BlackElo"])
		record.RatingChange = safeInt(headers["WhiteRatingDiff"])
	} else {
		record.OwnRating = safeInt(headers["BlackElo"])
		record.OpponentRating = safeInt(headers["WhiteElo"])
		record.RatingChange = safeInt(headers["BlackRatingDiff"])
	}

	record.BaseTime, record.Increment = parseTimeControl(headers["TimeControl"])
	record.TimeClass = classifyTimeControl(record.BaseTime, record.Increment)

	moves := cleanMoves(strings.Join(moveLines, " "))
	plies, mate := replayMoves(moves)
	record.MoveCount = plies
	record.Termination = normalizeTermination(headers["Termination"], record.Result, mate)

	return record, nil
}

func perspectiveResult(rawResult string, color models.Color) models.Result {
	switch rawResult {
	case "1-0":
		if color == models.ColorWhite {
			return models.ResultWin
		}
		return models.ResultLoss
	case "0-1":
		if color == models.ColorBlack {
			return models.ResultWin
		}
		return models.ResultLoss
	default:
		return models.ResultDraw
	}
}

// parseTimestamp prefers the UTC headers lichess writes. A zero time
// marks an unparseable date; downstream grouping keeps those visible in
// the unknown bucket instead of dropping them.
func parseTimestamp(headers map[string]string) time.Time {
	if d, t := headers["UTCDate"], headers["UTCTime"]; d != "" && t != "" {
		if ts, err := time.Parse("2006.01.02 15:04:05", d+" "+t); err == nil {
			return ts.UTC()
		}
	}
	if d := headers["Date"]; d != "" {
		if ts, err := time.Parse("2006.01.02", d); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func parseTimeControl(tc string) (base, increment int) {
	if idx := strings.Index(tc, "+"); idx >= 0 {
		return safeInt(tc[:idx]), safeInt(tc[idx+1:])
	}
	return safeInt(tc), 0
}

func classifyTimeControl(base, increment int) models.TimeClass {
	estimated := base + increment*40
	switch {
	case estimated < bulletLimit:
		return models.TimeClassBullet
	case estimated < blitzLimit:
		return models.TimeClassBlitz
	case estimated < rapidLimit:
		return models.TimeClassRapid
	default:
		return models.TimeClassClassical
	}
}

func normalizeTermination(header string, result models.Result, mate bool) models.Termination {
	switch header {
	case "Time forfeit":
		return models.TerminationTimeout
	case "Abandoned":
		return models.TerminationAbandoned
	case "Normal":
		switch {
		case mate:
			return models.TerminationCheckmate
		case result == models.ResultDraw:
			return models.TerminationDrawAgreement
		default:
			return models.TerminationResignation
		}
	default:
		return models.TerminationOther
	}
}

// replayMoves pushes the SAN tokens through a fresh game to count plies
// and detect mate. Tokens the engine rejects fall back to token counting
// so one odd annotation cannot zero out a game's length.
func replayMoves(moveText string) (plies int, mate bool) {
	tokens := moveTokens(moveText)
	game := chess.NewGame()

	for _, token := range tokens {
		if err := game.MoveStr(token); err != nil {
			return len(tokens), false
		}
	}

	return len(tokens), game.Method() == chess.Checkmate
}

func cleanMoves(moves string) string {
	moves = commentRegex.ReplaceAllString(moves, "")
	moves = variantRegex.ReplaceAllString(moves, "")
	moves = nagRegex.ReplaceAllString(moves, "")
	moves = spaceRegex.ReplaceAllString(moves, " ")
	return strings.TrimSpace(moves)
}

func moveTokens(moveText string) []string {
	moveText = moveNumRegex.ReplaceAllString(moveText, "")

	parts := strings.Fields(moveText)
	var moves []string

	for _, part := range parts {
		if part == "1-0" || part == "0-1" || part == "1/2-1/2" || part == "*" {
			break
		}
		if part != "" && !strings.HasSuffix(part, ".") {
			moves = append(moves, part)
		}
	}

	return moves
}

func safeInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
