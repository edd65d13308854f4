package stake

// Operation names of the GraphQL documents below
const (
	OperationUserBalances = "UserBalances"
	OperationDiceRoll     = "DiceRoll"
	OperationLimboBet     = "LimboBet"
)

const userBalancesQuery = `query UserBalances {
  user {
    id
    balances {
      available {
        amount
        currency
        __typename
      }
      vault {
        amount
        currency
        __typename
      }
      __typename
    }
    __typename
  }
}`

const casinoBetFragment = `
fragment CasinoBet on CasinoBet {
  id
  active
  payoutMultiplier
  amountMultiplier
  amount
  payout
  updatedAt
  currency
  game
  user {
    id
    name
  }
}`

const diceRollMutation = `mutation DiceRoll($amount: Float!, $target: Float!, $condition: CasinoGameDiceConditionEnum!, $currency: CurrencyEnum!, $identifier: String!) {
  diceRoll(
    amount: $amount
    target: $target
    condition: $condition
    currency: $currency
    identifier: $identifier
  ) {
    ...CasinoBet
    state {
      ...CasinoGameDice
    }
  }
}
` + casinoBetFragment + `

fragment CasinoGameDice on CasinoGameDice {
  result
  target
  condition
}`

const limboBetMutation = `mutation LimboBet($amount: Float!, $multiplierTarget: Float!, $currency: CurrencyEnum!, $identifier: String!) {
  limboBet(
    amount: $amount
    currency: $currency
    multiplierTarget: $multiplierTarget
    identifier: $identifier
  ) {
    ...CasinoBet
    state {
      ...CasinoGameLimbo
    }
  }
}
` + casinoBetFragment + `

fragment CasinoGameLimbo on CasinoGameLimbo {
  result
  multiplierTarget
}`

// graphQLRequest is the body of every request
type graphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}
