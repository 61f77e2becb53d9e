package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/pkg"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/repository"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	GetByGameID(ctx context.Context, gameID string) (*entity.Result, error)
	List(ctx context.Context, limit int) ([]*entity.Result, error)
}

// GameManager is the session layer around the engine: it seats players,
// routes moves to the right game and archives finished games.
//
// Locks are keyed by player and by game. A player lock is always taken
// before a game lock, never the other way round.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo
	resultRepo resultRepo

	locks *gameLocks
	now   func() time.Time
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, resultRepo resultRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		resultRepo: resultRepo,

		locks: newGameLocks(),
		now:   time.Now,
	}
}

func playerLockKey(id string) string {
	return "player:" + id
}

func gameLockKey(id string) string {
	return "game:" + id
}

// GetOrCreatePlayer - returns the player for id, or a new one when id is empty or unknown.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		return that.createPlayer(ctx)
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return that.createPlayer(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// CreateGame - opens a waiting game seated by playerID.
func (that *GameManager) CreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	unlock := that.locks.lock(playerLockKey(playerID))
	defer unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = that.ensureFree(ctx, player); err != nil {
		return nil, err
	}

	game := entity.NewGame(pkg.GenerateGameID())

	player.GameID = game.ID
	player.Mark = tictactoe.Empty
	game.Players = []*entity.Player{player}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	that.logger.Info("game created", "game_id", game.ID, "player_id", player.ID)

	return game, nil
}

// JoinGame - seats playerID as the second player and starts the game.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlockPlayer := that.locks.lock(playerLockKey(playerID))
	defer unlockPlayer()

	unlockGame := that.locks.lock(gameLockKey(gameID))
	defer unlockGame()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.PlayerByID(playerID) != nil {
		return game, nil
	}

	switch {
	case game.IsFinished():
		return nil, apperror.ErrGameFinished
	case !game.IsWaiting():
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = that.ensureFree(ctx, player); err != nil {
		return nil, err
	}

	player.GameID = game.ID
	game.Players = append(game.Players, player)
	game.Start()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	for _, seated := range game.Players {
		if err = that.updatePlayer(ctx, seated); err != nil {
			return nil, err
		}
	}

	that.logger.Info("game started", "game_id", game.ID,
		"player_x", game.PlayerByMark(tictactoe.PlayerX).ID,
		"player_o", game.PlayerByMark(tictactoe.PlayerO).ID)

	return game, nil
}

// MakeMove - plays the player's mark at cell of subBoard in gameID.
func (that *GameManager) MakeMove(
	ctx context.Context, gameID, playerID string, subBoard, cell tictactoe.Coord,
) (*entity.Game, tictactoe.MoveOutcome, error) {
	game, outcome, err := that.applyMove(ctx, gameID, playerID, subBoard, cell)
	if err != nil {
		return nil, tictactoe.MoveOutcome{}, err
	}

	if game.IsFinished() {
		that.finishGame(ctx, game)
	}

	return game, outcome, nil
}

func (that *GameManager) applyMove(
	ctx context.Context, gameID, playerID string, subBoard, cell tictactoe.Coord,
) (*entity.Game, tictactoe.MoveOutcome, error) {
	unlock := that.locks.lock(gameLockKey(gameID))
	defer unlock()

	game, seat, err := that.seatedInOngoingGame(ctx, gameID, playerID)
	if err != nil {
		return nil, tictactoe.MoveOutcome{}, err
	}

	if seat.Mark != game.Board.CurrentPlayer() {
		return nil, tictactoe.MoveOutcome{}, apperror.ErrNotYourTurn
	}

	outcome, err := game.Board.MakeMove(subBoard.X, subBoard.Y, cell.X, cell.Y)
	if err != nil {
		return nil, tictactoe.MoveOutcome{}, fmt.Errorf("failed make move: %w", err)
	}

	game.SyncResult()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, tictactoe.MoveOutcome{}, err
	}

	return game, outcome, nil
}

// Resign - playerID concedes and the opponent wins. A game nobody has joined
// yet is cancelled instead: it is removed and its creator is free again.
func (that *GameManager) Resign(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, cancelled, err := that.resign(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	if cancelled {
		that.releasePlayers(ctx, game)
		that.logger.Info("game cancelled", "game_id", game.ID, "player_id", playerID)

		return game, nil
	}

	that.finishGame(ctx, game)

	return game, nil
}

func (that *GameManager) resign(ctx context.Context, gameID, playerID string) (*entity.Game, bool, error) {
	unlock := that.locks.lock(gameLockKey(gameID))
	defer unlock()

	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, false, err
	}

	seat := game.PlayerByID(playerID)
	if seat == nil {
		return nil, false, apperror.ErrNotAPlayer
	}

	if game.IsWaiting() {
		if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
			return nil, false, fmt.Errorf("failed to delete game: %w", err)
		}

		game.Cancel()

		return game, true, nil
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, false, err
	}

	if err = game.Board.ResignAs(seat.Mark); err != nil {
		return nil, false, fmt.Errorf("failed to resign: %w", err)
	}

	game.SyncResult()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, false, err
	}

	return game, false, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

// GetResult - the archived result of a finished game.
func (that *GameManager) GetResult(ctx context.Context, gameID string) (*entity.Result, error) {
	result, err := that.resultRepo.GetByGameID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	return result, nil
}

func (that *GameManager) ListResults(ctx context.Context, limit int) ([]*entity.Result, error) {
	results, err := that.resultRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

func (that *GameManager) seatedInOngoingGame(
	ctx context.Context, gameID, playerID string,
) (*entity.Game, *entity.Player, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	seat := game.PlayerByID(playerID)
	if seat == nil {
		return nil, nil, apperror.ErrNotAPlayer
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return nil, nil, err
	}

	return game, seat, nil
}

// ensureFree - a player may only sit in one unfinished game at a time.
// Callers hold the player's lock.
func (that *GameManager) ensureFree(ctx context.Context, player *entity.Player) error {
	if player.GameID == "" {
		return nil
	}

	current, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get current game: %w", err)
	}

	if current.IsFinished() {
		return nil
	}

	return fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, current.ID)
}

// finishGame - releases both players and archives the result. The game
// itself is already stored as finished.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finishGame", "game_id", game.ID)

	that.releasePlayers(ctx, game)

	result, err := entity.NewResult(game, that.now())
	if err != nil {
		log.Error("failed to build result", "error", err)
		return
	}

	if err = that.resultRepo.Save(ctx, result); err != nil {
		log.Error("failed to archive result", "error", err)
		return
	}

	log.Info("game finished", "outcome", result.Outcome, "winner", result.Winner)
}

// releasePlayers - clears the seat of every player still pointing at game.
// Must be called without the game lock held.
func (that *GameManager) releasePlayers(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "releasePlayers", "game_id", game.ID)

	for _, seated := range game.Players {
		that.releasePlayer(ctx, log, seated.ID, game.ID)
	}
}

func (that *GameManager) releasePlayer(ctx context.Context, log *slog.Logger, playerID, gameID string) {
	unlock := that.locks.lock(playerLockKey(playerID))
	defer unlock()

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		log.Error("failed to get player", "player_id", playerID, "error", err)
		return
	}

	if player.GameID != gameID {
		return
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, &entity.Player{ID: playerID}); err != nil {
		log.Error("failed to release player", "player_id", playerID, "error", err)
	}
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: pkg.GenerateNewSessionID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
