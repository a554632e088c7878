package session

// rule is one accepted trigger. When internal is set and returns true the
// trigger is handled inside the phase and no transition happens.
type rule struct {
	to       Phase
	internal func(m *Machine) bool
}

// phaseSpec holds a phase's actions and accepted triggers.
type phaseSpec struct {
	entry func(m *Machine, from Phase)
	exit  func(m *Machine, to Phase)
	rules map[Trigger]rule
}

// phases is the transition table. PersonLeaves routes every non-waiting
// phase back to WaitingForPresence.
var phases = [...]phaseSpec{
	WaitingForPresence: {
		entry: (*Machine).enterWaiting,
		rules: map[Trigger]rule{
			PersonEnters: {to: ConfirmingPresence},
		},
	},
	ConfirmingPresence: {
		entry: (*Machine).enterConfirming,
		exit:  (*Machine).exitConfirming,
		rules: map[Trigger]rule{
			TimerTick:    {to: Countdown},
			PersonLeaves: {to: WaitingForPresence},
		},
	},
	Countdown: {
		entry: (*Machine).enterCountdown,
		exit:  (*Machine).exitCountdown,
		rules: map[Trigger]rule{
			TimerTick:    {to: Snapshot, internal: (*Machine).countdownStep},
			PersonLeaves: {to: WaitingForPresence},
		},
	},
	Snapshot: {
		entry: (*Machine).enterSnapshot,
		rules: map[Trigger]rule{
			TimerTick:    {to: Painting},
			PersonLeaves: {to: WaitingForPresence},
		},
	},
	Painting: {
		entry: (*Machine).enterPainting,
		exit:  (*Machine).exitPainting,
		rules: map[Trigger]rule{
			TimerTick:    {to: SavingImage},
			PersonLeaves: {to: WaitingForPresence},
		},
	},
	SavingImage: {
		entry: (*Machine).enterSaving,
		exit:  (*Machine).exitSaving,
		rules: map[Trigger]rule{
			TimerTick:    {to: WaitingForPresence},
			PersonLeaves: {to: WaitingForPresence},
		},
	},
}

// Accepts reports whether phase p has a rule for trigger t.
func Accepts(p Phase, t Trigger) bool {
	if p < 0 || int(p) >= len(phases) {
		return false
	}
	_, ok := phases[p].rules[t]
	return ok
}
