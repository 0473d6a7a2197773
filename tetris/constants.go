package tetris

import "time"

const (
	// BoardWidth and BoardHeight are the playfield size in cells.
	BoardWidth  = 10
	BoardHeight = 20

	// SpawnX and SpawnY are the top-left of the 4x4 box of a freshly spawned tetromino.
	SpawnX = 3
	SpawnY = 0

	InitialDelay        = 800 * time.Millisecond
	MinDelay            = 100 * time.Millisecond
	LevelSpeedIncrement = 50 * time.Millisecond
	SoftDropDelay       = 50 * time.Millisecond

	LinesPerLevel = 10
)

// LineScores is the base score for the number of lines cleared by a single lock.
// It is multiplied by the level the lines were cleared at.
var LineScores = [5]int{0, 100, 300, 500, 800}

// delayFor returns the automatic descent interval for a level.
func delayFor(level int) time.Duration {
	return max(MinDelay, InitialDelay-time.Duration(level-1)*LevelSpeedIncrement)
}
