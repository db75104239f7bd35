package indicator

import (
	"testing"
	"time"

	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/hypr"
	"github.com/stretchr/testify/require"
)

func TestResolveLocaleDefaultsToEnglish(t *testing.T) {
	require.Equal(t, localeEnglish, resolveLocale("en_US.UTF-8"))
	require.Equal(t, localeEnglish, resolveLocale("fr_FR.UTF-8"))
}

func TestNoticeFor(t *testing.T) {
	msg := indicatorMessages(localeEnglish)

	n, ok := msg.noticeFor(fsm.StateUserTurn)
	require.True(t, ok)
	require.Equal(t, hypr.Notice{Icon: hypr.IconInfo, Timeout: 5 * time.Minute, Color: colorRecording, Text: "Recording…"}, n)

	n, ok = msg.noticeFor(fsm.StateReadyToListen)
	require.True(t, ok)
	require.Equal(t, hypr.IconOK, n.Icon)
	require.Equal(t, colorReady, n.Color)

	n, ok = msg.noticeFor(fsm.StateSummaryDisplayed)
	require.True(t, ok)
	require.Equal(t, 4*time.Second, n.Timeout)

	_, ok = msg.noticeFor(fsm.StateIdle)
	require.False(t, ok)
	_, ok = msg.noticeFor(fsm.StateError)
	require.False(t, ok)
	require.Equal(t, "Interview error", msg.errorText)
}
