/*
Package architect turns a short guided conversation into a photorealistic
interior-design prompt for image generators.

A user walks through six choices in a fixed order: platform, interior style,
photographer, lighting, camera angle and clutter. The last choice composes a
deterministic prompt from the catalog texts and appends it to the user's history.

# Usage

	eng, err := architect.New("./data",
		architect.WithHistoryStore(history),
		architect.WithAccessGate(gate),
	)
	if err != nil {
		log.Fatal(err)
	}

	out, err := eng.BeginSession(ctx, "42")
	// present out.Options, then for each answer:
	out, err = eng.SubmitChoice(ctx, "42", "Ana", "platform", "Midjourney")
	if out.Composed() {
		fmt.Println(out.Prompt)
	}

Validation failures (domain.ErrNoActiveSession, domain.ErrStepMismatch and
domain.ErrUnknownOption) leave the session untouched and are meant to be
turned into a retry prompt by the transport. See domain.IsValidation.
*/
package architect
