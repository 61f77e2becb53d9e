package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/repository"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockResultRepo struct {
	mock.Mock
}

func (that *mockResultRepo) Save(ctx context.Context, result *entity.Result) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockResultRepo) GetByGameID(ctx context.Context, gameID string) (*entity.Result, error) {
	args := that.Called(ctx, gameID)
	result, _ := args.Get(0).(*entity.Result)
	return result, args.Error(1)
}

func (that *mockResultRepo) List(ctx context.Context, limit int) ([]*entity.Result, error) {
	args := that.Called(ctx, limit)
	results, _ := args.Get(0).([]*entity.Result)
	return results, args.Error(1)
}

// memStore keeps JSON copies, so every read rebuilds the engine the way
// the redis repository does.
type memStore struct {
	mu      sync.Mutex
	players map[string][]byte
	games   map[string][]byte
	results []*entity.Result
}

func newMemStore() *memStore {
	return &memStore{
		players: make(map[string][]byte),
		games:   make(map[string][]byte),
	}
}

type memPlayers struct{ *memStore }

func (that memPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	that.players[player.ID] = data

	return nil
}

func (that memPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, ok := that.players[id]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

type memGames struct{ *memStore }

func (that memGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	that.games[game.ID] = data

	return nil
}

func (that memGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, ok := that.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that memGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(that.games, id)

	return nil
}

type memResults struct{ *memStore }

func (that memResults) Save(_ context.Context, result *entity.Result) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.results = append(that.results, result)

	return nil
}

func (that memResults) GetByGameID(_ context.Context, gameID string) (*entity.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, result := range that.results {
		if result.GameID == gameID {
			return result, nil
		}
	}

	return nil, repository.ErrResultNotFound
}

func (that memResults) List(_ context.Context, limit int) ([]*entity.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	results := make([]*entity.Result, 0, limit)
	for i := len(that.results) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, that.results[i])
	}

	return results, nil
}

// slowPlayers widens the window between reading a player and writing it back.
type slowPlayers struct {
	memPlayers
	delay time.Duration
}

func (that slowPlayers) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	time.Sleep(that.delay)
	return that.memPlayers.GetByID(ctx, id)
}
