package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-chart/vantage-engine/scheduler"
)

func TestCommandKindUpdateKindMapsConfigCommands(t *testing.T) {
	assert.Equal(t, scheduler.Config, SetPreset.updateKind())
	assert.Equal(t, scheduler.Config, SetQualityPreset.updateKind())
}

func TestCommandKindUpdateKindMapsDataCommands(t *testing.T) {
	assert.Equal(t, scheduler.Data, SetSymbol.updateKind())
}

func TestCommandKindUpdateKindMapsViewCommands(t *testing.T) {
	assert.Equal(t, scheduler.View, ToggleMetric.updateKind())
	assert.Equal(t, scheduler.View, SetTimeRange.updateKind(), "a range pan escalates to Data reactively, not via the command mapping")
}

func TestCommandKindStringNamesEveryKind(t *testing.T) {
	assert.Equal(t, "SetSymbol", SetSymbol.String())
	assert.Equal(t, "SetTimeRange", SetTimeRange.String())
	assert.Equal(t, "SetPreset", SetPreset.String())
	assert.Equal(t, "ToggleMetric", ToggleMetric.String())
	assert.Equal(t, "SetQualityPreset", SetQualityPreset.String())
	assert.Equal(t, "Unknown", CommandKind(99).String())
}

func TestEngineCommandHandlerInvokedForDrainedCommand(t *testing.T) {
	e := NewEngine().(*engine)

	received := make(chan Command, 1)
	e.SetCommandHandler(func(c Command) {
		received <- c
	})

	e.wg.Add(1)
	go e.runCommandLoop()

	e.Commands() <- Command{Kind: SetSymbol, Exchange: "NASDAQ", Symbol: "AAPL"}

	select {
	case c := <-received:
		assert.Equal(t, SetSymbol, c.Kind)
		assert.Equal(t, "AAPL", c.Symbol)
	case <-time.After(time.Second):
		t.Fatal("command handler was not invoked")
	}

	close(e.commandQuit)
	e.wg.Wait()
}
