package stake

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/stakebot/internal/models"
)

const (
	keyUser     = "user"
	keyDiceRoll = "diceRoll"
	keyLimboBet = "limboBet"
)

type envelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []wireError                `json:"errors"`
}

type wireError struct {
	ErrorType string   `json:"errorType"`
	Message   string   `json:"message"`
	Path      []string `json:"path"`
}

type wireAmount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type wireUser struct {
	ID       string `json:"id"`
	Balances []struct {
		Available wireAmount `json:"available"`
		Vault     wireAmount `json:"vault"`
	} `json:"balances"`
}

type wireBet struct {
	ID               string          `json:"id"`
	Active           bool            `json:"active"`
	PayoutMultiplier decimal.Decimal `json:"payoutMultiplier"`
	AmountMultiplier decimal.Decimal `json:"amountMultiplier"`
	Amount           decimal.Decimal `json:"amount"`
	Payout           decimal.Decimal `json:"payout"`
	UpdatedAt        json.RawMessage `json:"updatedAt"`
	Currency         string          `json:"currency"`
	Game             string          `json:"game"`
	User             models.User     `json:"user"`
	State            json.RawMessage `json:"state"`
}

type wireDiceState struct {
	Result    decimal.Decimal `json:"result"`
	Target    decimal.Decimal `json:"target"`
	Condition string          `json:"condition"`
}

type wireLimboState struct {
	Result           decimal.Decimal `json:"result"`
	MultiplierTarget decimal.Decimal `json:"multiplierTarget"`
}

// response is a classified, well-formed reply. Exactly one field is set.
type response struct {
	Balances models.Balances
	Bet      *models.BetResult
}

// parseResponse classifies a well-formed body in this order: reported errors,
// user balances, a single bet payload. Anything else is an unrecognized shape.
func parseResponse(body []byte) (*response, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewUnrecognizedResponseShapeError("not a GraphQL envelope: %v", err)
	}

	if len(env.Errors) > 0 {
		first := env.Errors[0]
		return nil, MapAPIError(first.ErrorType, first.Message)
	}

	if raw, ok := present(env.Data, keyUser); ok {
		balances, err := parseBalances(raw)
		if err != nil {
			return nil, err
		}
		return &response{Balances: balances}, nil
	}

	var betKeys []string
	for _, key := range []string{keyDiceRoll, keyLimboBet} {
		if _, ok := present(env.Data, key); ok {
			betKeys = append(betKeys, key)
		}
	}
	switch len(betKeys) {
	case 0:
		return nil, NewUnrecognizedResponseShapeError("no known payload in data keys [%s]", dataKeys(env.Data))
	case 1:
		bet, err := parseBet(betKeys[0], env.Data[betKeys[0]])
		if err != nil {
			return nil, err
		}
		return &response{Bet: bet}, nil
	default:
		return nil, NewUnrecognizedResponseShapeError("ambiguous bet payload: %s", strings.Join(betKeys, ", "))
	}
}

func present(data map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := data[key]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func dataKeys(data map[string]json.RawMessage) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func parseBalances(raw json.RawMessage) (models.Balances, error) {
	var user wireUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, NewUnrecognizedResponseShapeError("user balances: %v", err)
	}

	// The account lists every wallet it holds; only bettable currencies are kept
	balances := make(models.Balances, 0, len(user.Balances))
	for _, b := range user.Balances {
		currency, err := models.ParseCurrency(b.Available.Currency)
		if err != nil {
			continue
		}
		balances = append(balances, models.Balance{
			Available: models.Amount{Amount: b.Available.Amount, Currency: currency},
			Vault:     models.Amount{Amount: b.Vault.Amount, Currency: currency},
		})
	}
	return balances, nil
}

func parseBet(key string, raw json.RawMessage) (*models.BetResult, error) {
	var wb wireBet
	if err := json.Unmarshal(raw, &wb); err != nil {
		return nil, NewUnrecognizedResponseShapeError("%s: %v", key, err)
	}

	currency, err := models.ParseCurrency(wb.Currency)
	if err != nil {
		return nil, NewUnrecognizedResponseShapeError("%s: %v", key, err)
	}
	game, err := models.ParseGame(wb.Game)
	if err != nil {
		return nil, NewUnrecognizedResponseShapeError("%s: %v", key, err)
	}

	bet := &models.BetResult{
		ID:               wb.ID,
		Active:           wb.Active,
		PayoutMultiplier: wb.PayoutMultiplier,
		AmountMultiplier: wb.AmountMultiplier,
		Amount:           wb.Amount,
		Payout:           wb.Payout,
		UpdatedAt:        unquote(wb.UpdatedAt),
		Currency:         currency,
		Game:             game,
		User:             wb.User,
	}

	switch key {
	case keyDiceRoll:
		var s wireDiceState
		if err := json.Unmarshal(wb.State, &s); err != nil {
			return nil, NewUnrecognizedResponseShapeError("%s state: %v", key, err)
		}
		condition, err := models.ParseDirection(s.Condition)
		if err != nil {
			return nil, NewUnrecognizedResponseShapeError("%s state: %v", key, err)
		}
		bet.State = models.DiceState{Target: s.Target, Result: s.Result, Condition: condition}
	case keyLimboBet:
		var s wireLimboState
		if err := json.Unmarshal(wb.State, &s); err != nil {
			return nil, NewUnrecognizedResponseShapeError("%s state: %v", key, err)
		}
		bet.State = models.LimboState{Result: s.Result, MultiplierTarget: s.MultiplierTarget}
	}

	if bet.State.Game() != game {
		return nil, NewUnrecognizedResponseShapeError("%s payload reports game %q", key, game)
	}
	return bet, nil
}

// unquote accepts updatedAt as either a string or a number
func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
