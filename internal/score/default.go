package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/handbeat/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const DefaultPath = "./scores.db"

var errNotInitialised = errors.New("scorer is not initialised")

type DefaultScorer struct {
	Path string
	Log  zerolog.Logger

	db *sql.DB
}

// compactJudgements stores counts in grade order.
func compactJudgements(counts map[game.Judgement]int) []int {
	out := make([]int, len(game.Judgements))
	for _, j := range game.Judgements {
		out[j] = counts[j]
	}
	return out
}

func uncompactJudgements(counts []int) map[game.Judgement]int {
	out := make(map[game.Judgement]int, len(game.Judgements))
	for _, j := range game.Judgements {
		out[j] = 0
		if int(j) < len(counts) {
			out[j] = counts[j]
		}
	}
	return out
}

func (s *DefaultScorer) Init() error {
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return fmt.Errorf("unable to open score database: %w", err)
	}

	initStatement := `
	create table if not exists scores
	  (
		  id integer not null primary key,
		  sum text not null,
		  session text not null,
		  score integer not null,
		  max_combo integer not null,
		  judgements blob,
		  played_at integer not null
	  );
	create index if not exists scores_sum on scores(sum);
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create score table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		if err := s.db.Close(); nil != err {
			s.Log.Warn().Err(err).Msg("unable to close score database")
		}
		s.db = nil
	}
}

func (s *DefaultScorer) hashChart(c *game.Chart) string {
	data, _ := json.Marshal(struct {
		BPM    float64
		Offset float64
		Notes  []*game.Note
	}{c.BPM, c.Offset, c.Notes})
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultScorer) Save(c *game.Chart, session uuid.UUID, result game.GameResult) error {
	if nil == s.db {
		return errNotInitialised
	}
	data, err := json.Marshal(compactJudgements(result.Judgements))
	if nil != err {
		return fmt.Errorf("unable to marshal judgements: %w", err)
	}
	_, err = s.db.Exec(
		"insert into scores(sum, session, score, max_combo, judgements, played_at) values(?, ?, ?, ?, ?, ?)",
		s.hashChart(c), session.String(), result.Score, result.MaxCombo, data, time.Now().UnixNano(),
	)
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	s.Log.Info().
		Str("chart", c.Title).
		Str("session", session.String()).
		Int("score", result.Score).
		Msg("saved score")
	return nil
}

func (s *DefaultScorer) query(q string, args ...interface{}) ([]History, error) {
	if nil == s.db {
		return nil, errNotInitialised
	}
	rows, err := s.db.Query(q, args...)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()

	histories := []History{}
	for rows.Next() {
		var (
			h        History
			session  string
			counts   []byte
			playedAt int64
		)
		if err := rows.Scan(&h.Sum, &session, &h.Result.Score, &h.Result.MaxCombo, &counts, &playedAt); nil != err {
			return nil, fmt.Errorf("unable to scan score: %w", err)
		}
		h.Session, err = uuid.Parse(session)
		if nil != err {
			s.Log.Warn().Err(err).Str("session", session).Msg("skipping score with bad session id")
			continue
		}
		var cs []int
		if err := json.Unmarshal(counts, &cs); nil != err {
			s.Log.Warn().Err(err).Msg("unable to unmarshal judgement history")
			continue
		}
		h.Result.Judgements = uncompactJudgements(cs)
		h.PlayedAt = time.Unix(0, playedAt)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

func (s *DefaultScorer) Load(c *game.Chart) ([]History, error) {
	return s.query(
		"select sum, session, score, max_combo, judgements, played_at from scores where sum = ? order by played_at desc, id desc",
		s.hashChart(c),
	)
}

func (s *DefaultScorer) Best(c *game.Chart) (*History, error) {
	histories, err := s.query(
		"select sum, session, score, max_combo, judgements, played_at from scores where sum = ? order by score desc, id asc limit 1",
		s.hashChart(c),
	)
	if nil != err || len(histories) == 0 {
		return nil, err
	}
	return &histories[0], nil
}
