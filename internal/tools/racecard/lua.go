package racecard

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"
)

const raceTypeName = "race"

func parseLua(name, text string) (*Card, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerRaceType(state)
	registerRaceConstructor(state)

	if err := lua.LoadBuffer(state, text, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("%w: card script must return Race", ErrInvalidCard)
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	card, ok := ud.(*Card)
	if !ok || card == nil {
		return nil, fmt.Errorf("%w: card script returned an invalid Race", ErrInvalidCard)
	}
	return card, nil
}

func registerRaceType(state *lua.State) {
	lua.NewMetaTable(state, raceTypeName)
	state.NewTable()
	lua.SetFunctions(state, raceMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerRaceConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, raceConstructor, 0)
	state.SetGlobal("Race")
}

var raceConstructor = []lua.RegistryFunction{
	{Name: "new", Function: raceNew},
}

var raceMethods = []lua.RegistryFunction{
	{Name: "skill", Function: raceSkill},
	{Name: "entrant", Function: raceEntrant},
}

func raceNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	card := &Card{Name: name, Race: optionalTable(state, 2)}
	state.PushUserData(card)
	lua.SetMetaTableNamed(state, raceTypeName)
	return 1
}

func raceSkill(state *lua.State) int {
	card := checkRace(state)
	lua.CheckType(state, 2, lua.TypeTable)
	card.Skills = append(card.Skills, tableToMap(state, 2))
	return 0
}

func raceEntrant(state *lua.State) int {
	card := checkRace(state)
	name := lua.CheckString(state, 2)
	card.Entrants = append(card.Entrants, Entrant{Name: name, Args: optionalTable(state, 3)})
	return 0
}

func checkRace(state *lua.State) *Card {
	ud := lua.CheckUserData(state, 1, raceTypeName)
	if card, ok := ud.(*Card); ok && card != nil {
		return card
	}
	lua.ArgumentError(state, 1, "race expected")
	return nil
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a sequence table as []any and any other table as a map.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				maxIndex = max(maxIndex, idx)
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) < math.MaxInt32 {
		return int(value)
	}
	return value
}
