package llmcall

import "testing"

func TestComputeHashes(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := ComputeHashes("openai", "sys", "task", "supp", "resp")
		b := ComputeHashes("openai", "sys", "task", "supp", "resp")
		if a != b {
			t.Errorf("same inputs produced different hashes: %+v vs %+v", a, b)
		}
	})

	t.Run("absent components have empty digests", func(t *testing.T) {
		h := ComputeHashes("openai", "", "task", "", "")
		if h.System != "" || h.Supplementary != "" || h.Response != "" {
			t.Errorf("expected empty digests for absent components: %+v", h)
		}
		if h.Task == "" || h.OverallRequest == "" {
			t.Error("task and overall digests should be set")
		}
	})

	t.Run("provider changes overall hash", func(t *testing.T) {
		a := ComputeHashes("openai", "sys", "task", "", "")
		b := ComputeHashes("anthropic", "sys", "task", "", "")
		if a.OverallRequest == b.OverallRequest {
			t.Error("different providers should produce different overall hashes")
		}
		if a.Task != b.Task {
			t.Error("component digests should not depend on provider")
		}
	})

	t.Run("adding supplementary changes overall hash", func(t *testing.T) {
		without := ComputeHashes("openai", "sys", "task", "", "")
		with := ComputeHashes("openai", "sys", "task", "supp", "")
		if without.OverallRequest == with.OverallRequest {
			t.Error("supplementary text should change the overall hash")
		}
	})

	t.Run("supplementary content changes overall hash", func(t *testing.T) {
		a := ComputeHashes("openai", "sys", "task", "focus on food", "")
		b := ComputeHashes("openai", "sys", "task", "focus on temples", "")
		if a.OverallRequest == b.OverallRequest {
			t.Error("different supplementary content should change the overall hash")
		}
	})

	t.Run("response does not affect overall hash", func(t *testing.T) {
		a := ComputeHashes("openai", "sys", "task", "", "")
		b := ComputeHashes("openai", "sys", "task", "", "some response")
		if a.OverallRequest != b.OverallRequest {
			t.Error("overall request hash must not depend on the response")
		}
		if b.Response == "" {
			t.Error("response digest should be set when a response is present")
		}
	})

	t.Run("system and task are position sensitive", func(t *testing.T) {
		a := ComputeHashes("openai", "alpha", "beta", "", "")
		b := ComputeHashes("openai", "beta", "alpha", "", "")
		if a.OverallRequest == b.OverallRequest {
			t.Error("swapping system and task should change the overall hash")
		}
	})
}
