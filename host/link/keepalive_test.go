package link

import (
	"errors"
	"time"

	"github.com/led-icicles/icicles-serial/protocol"
)

func (suite *SessionTestSuite) TestStartSendsPingAndArms() {
	suite.False(suite.session.PingsEnabled())

	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 10 * time.Second}))
	suite.expectWrite([]byte{0})
	suite.True(suite.session.PingsEnabled())

	suite.clock.Advance(10 * time.Second)
	suite.expectWrite([]byte{0})

	suite.clock.Advance(10 * time.Second)
	suite.expectWrite([]byte{0})
}

func (suite *SessionTestSuite) TestStartDefaultsInterval() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: -1}))
	suite.expectWrite([]byte{0})
	suite.Equal(DefaultPingEvery, suite.session.PingEvery())

	suite.clock.Advance(DefaultPingEvery - time.Second)
	suite.expectNoWrite()

	suite.clock.Advance(time.Second)
	suite.expectWrite([]byte{0})
}

func (suite *SessionTestSuite) TestDisplayDefersNextPing() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 10 * time.Second}))
	suite.expectWrite([]byte{0})

	suite.clock.Advance(6 * time.Second)
	suite.expectNoWrite()

	suite.Require().NoError(suite.session.Display(protocol.DisplayFrame{}))
	suite.expectWrite([]byte{1})
	suite.True(suite.session.PingsEnabled())

	// The original deadline passes without a ping
	suite.clock.Advance(6 * time.Second)
	suite.expectNoWrite()

	// A full interval after the display
	suite.clock.Advance(4 * time.Second)
	suite.expectWrite([]byte{0})
}

func (suite *SessionTestSuite) TestAutomaticPingKeepsFixedCadence() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 5 * time.Second}))
	suite.expectWrite([]byte{0})

	for i := 0; i < 3; i++ {
		suite.clock.Advance(4 * time.Second)
		suite.expectNoWrite()
		suite.clock.Advance(time.Second)
		suite.expectWrite([]byte{0})
	}
}

func (suite *SessionTestSuite) TestSendWithoutPingLeavesTimer() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 10 * time.Second}))
	suite.expectWrite([]byte{0})

	suite.clock.Advance(6 * time.Second)
	suite.Require().NoError(suite.session.SendWithOptions(protocol.EncodeDisplay(protocol.DisplayFrame{}), SendOptions{WithPing: false}))
	suite.expectWrite([]byte{1})

	suite.clock.Advance(4 * time.Second)
	suite.expectWrite([]byte{0})
}

func (suite *SessionTestSuite) TestSendBeforeStartDoesNotArm() {
	suite.Require().NoError(suite.session.Display(protocol.DisplayFrame{}))
	suite.expectWrite([]byte{1})
	suite.False(suite.session.PingsEnabled())

	suite.clock.Advance(DefaultPingEvery)
	suite.expectNoWrite()
}

func (suite *SessionTestSuite) TestStopSendsEndAndDisarms() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 10 * time.Second}))
	suite.expectWrite([]byte{0})

	suite.Require().NoError(suite.session.Stop())
	suite.expectWrite([]byte{10})
	suite.False(suite.session.PingsEnabled())

	suite.clock.Advance(30 * time.Second)
	suite.expectNoWrite()

	// Sends after Stop do not bring the timer back
	suite.Require().NoError(suite.session.Display(protocol.DisplayFrame{}))
	suite.expectWrite([]byte{1})
	suite.False(suite.session.PingsEnabled())
}

func (suite *SessionTestSuite) TestStopWaitsForAutomaticPing() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: time.Second}))
	suite.expectWrite([]byte{0})

	suite.port.HoldWrites()
	suite.clock.Advance(time.Second)
	suite.Eventually(suite.session.IsSending, waitFor, tick)

	stopped := make(chan error, 1)
	go func() { stopped <- suite.session.Stop() }()

	// End must not overtake the held ping
	suite.expectNoWrite()
	suite.port.ReleaseWrites()

	suite.expectWrite([]byte{0})
	suite.expectWrite([]byte{10})

	select {
	case err := <-stopped:
		suite.NoError(err)
	case <-time.After(waitFor):
		suite.FailNow("Stop did not return")
	}
	suite.False(suite.session.PingsEnabled())

	suite.clock.Advance(5 * time.Second)
	suite.expectNoWrite()
}

func (suite *SessionTestSuite) TestStopWhenDisarmedStillSendsEnd() {
	suite.Require().NoError(suite.session.Stop())
	suite.expectWrite([]byte{10})
	suite.False(suite.session.PingsEnabled())

	suite.Require().NoError(suite.session.Stop())
	suite.expectWrite([]byte{10})
}

func (suite *SessionTestSuite) TestStopReturnsEndWriteError() {
	suite.Require().NoError(suite.session.Start(StartOptions{}))
	suite.expectWrite([]byte{0})

	writeErr := errors.New("write failed")
	suite.port.SetWriteError(writeErr)

	suite.ErrorIs(suite.session.Stop(), writeErr)
	suite.False(suite.session.PingsEnabled())
}

func (suite *SessionTestSuite) TestRestartUsesLatestInterval() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 10 * time.Second}))
	suite.expectWrite([]byte{0})

	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: 2 * time.Second}))
	suite.expectWrite([]byte{0})
	suite.Equal(2*time.Second, suite.session.PingEvery())

	suite.clock.Advance(2 * time.Second)
	suite.expectWrite([]byte{0})

	suite.clock.Advance(2 * time.Second)
	suite.expectWrite([]byte{0})
}

func (suite *SessionTestSuite) TestFailedAutomaticPingDoesNotStopScheduler() {
	suite.Require().NoError(suite.session.Start(StartOptions{PingEvery: time.Second}))
	suite.expectWrite([]byte{0})

	suite.port.SetWriteError(errors.New("transient"))
	suite.clock.Advance(time.Second)
	suite.Eventually(func() bool {
		return suite.observer.failures(protocol.MessagePing) == 1
	}, waitFor, tick)
	suite.True(suite.session.PingsEnabled())

	suite.port.SetWriteError(nil)
	suite.clock.Advance(time.Second)
	suite.expectWrite([]byte{0})
}
