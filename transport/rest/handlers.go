package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/ultimate-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/repository"
	"github.com/rocketscienceinc/ultimate-tictactoe/internal/tictactoe"
)

const (
	sessionCookie = "user_session"
	sessionMaxAge = 30 * 24 * time.Hour

	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

var errBadRequest = errors.New("bad request")

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	CreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeMove(
		ctx context.Context, gameID, playerID string, subBoard, cell tictactoe.Coord,
	) (*entity.Game, tictactoe.MoveOutcome, error)
	Resign(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	GetResult(ctx context.Context, gameID string) (*entity.Result, error)
	ListResults(ctx context.Context, limit int) ([]*entity.Result, error)
}

type GameHandler interface {
	CreatePlayer(w http.ResponseWriter, r *http.Request)
	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	RenderBoard(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	MakeMove(w http.ResponseWriter, r *http.Request)
	Resign(w http.ResponseWriter, r *http.Request)
	GetResult(w http.ResponseWriter, r *http.Request)
	ListResults(w http.ResponseWriter, r *http.Request)
}

type gameHandler struct {
	logger *slog.Logger
	game   gameUseCase
}

func NewGameHandler(logger *slog.Logger, game gameUseCase) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

type moveRequest struct {
	SubBoard *tictactoe.Coord `json:"sub_board"`
	Cell     *tictactoe.Coord `json:"cell"`
}

type moveResponse struct {
	Game    *entity.Game          `json:"game"`
	Outcome tictactoe.MoveOutcome `json:"outcome"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *gameHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	player, err := that.session(w, r)
	if err != nil {
		that.writeError(w, "CreatePlayer", err)
		return
	}

	that.writeJSON(w, http.StatusOK, player)
}

func (that *gameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	player, err := that.session(w, r)
	if err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	game, err := that.game.CreateGame(r.Context(), player.ID)
	if err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.game.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

// RenderBoard - text picture of the board; ?select=mx,my highlights a sub-board.
func (that *gameHandler) RenderBoard(w http.ResponseWriter, r *http.Request) {
	var selected *tictactoe.Coord

	if raw := r.URL.Query().Get("select"); raw != "" {
		coord, err := parseCoord(raw)
		if err != nil {
			that.writeError(w, "RenderBoard", err)
			return
		}
		selected = &coord
	}

	game, err := that.game.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "RenderBoard", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(tictactoe.Render(game.Board, selected)))
}

func (that *gameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	player, err := that.session(w, r)
	if err != nil {
		that.writeError(w, "JoinGame", err)
		return
	}

	game, err := that.game.JoinGame(r.Context(), chi.URLParam(r, "id"), player.ID)
	if err != nil {
		that.writeError(w, "JoinGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) MakeMove(w http.ResponseWriter, r *http.Request) {
	playerID, err := sessionID(r)
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	var req moveRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, "MakeMove", fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	if req.SubBoard == nil || req.Cell == nil {
		that.writeError(w, "MakeMove", fmt.Errorf("%w: sub_board and cell are required", errBadRequest))
		return
	}

	game, outcome, err := that.game.MakeMove(r.Context(), chi.URLParam(r, "id"), playerID, *req.SubBoard, *req.Cell)
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, moveResponse{Game: game, Outcome: outcome})
}

func (that *gameHandler) Resign(w http.ResponseWriter, r *http.Request) {
	playerID, err := sessionID(r)
	if err != nil {
		that.writeError(w, "Resign", err)
		return
	}

	game, err := that.game.Resign(r.Context(), chi.URLParam(r, "id"), playerID)
	if err != nil {
		that.writeError(w, "Resign", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := that.game.GetResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetResult", err)
		return
	}

	that.writeJSON(w, http.StatusOK, result)
}

func (that *gameHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultsLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			that.writeError(w, "ListResults", fmt.Errorf("%w: limit must be a positive number", errBadRequest))
			return
		}
		limit = min(parsed, maxResultsLimit)
	}

	results, err := that.game.ListResults(r.Context(), limit)
	if err != nil {
		that.writeError(w, "ListResults", err)
		return
	}

	that.writeJSON(w, http.StatusOK, results)
}

// session - resolves the cookie to a player, issuing a fresh cookie when the
// stored one is missing or stale.
func (that *gameHandler) session(w http.ResponseWriter, r *http.Request) (*entity.Player, error) {
	var id string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}

	player, err := that.game.GetOrCreatePlayer(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if player.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    player.ID,
			Path:     "/",
			Expires:  time.Now().Add(sessionMaxAge),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return player, nil
}

func sessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", apperror.ErrNotAPlayer
	}

	return cookie.Value, nil
}

func parseCoord(raw string) (tictactoe.Coord, error) {
	xs, ys, ok := strings.Cut(raw, ",")
	if !ok {
		return tictactoe.Coord{}, fmt.Errorf("%w: expected x,y, got %q", errBadRequest, raw)
	}

	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return tictactoe.Coord{}, fmt.Errorf("%w: expected x,y, got %q", errBadRequest, raw)
	}

	return tictactoe.Coord{X: x, Y: y}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, repository.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrNotAPlayer):
		return http.StatusForbidden
	case errors.Is(err, tictactoe.ErrInvalidCoordinate),
		errors.Is(err, tictactoe.ErrInvalidMark):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tictactoe.ErrCellOccupied),
		errors.Is(err, tictactoe.ErrSubBoardNotActive),
		errors.Is(err, tictactoe.ErrSubBoardAlreadyCompleted),
		errors.Is(err, tictactoe.ErrBoardAlreadyDecided),
		errors.Is(err, tictactoe.ErrGameAlreadyOver),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameIsFull),
		errors.Is(err, apperror.ErrAlreadyInGame):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *gameHandler) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *gameHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
