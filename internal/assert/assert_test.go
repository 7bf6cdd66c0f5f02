package assert_test

import (
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"

	"github.com/shoenig/test/must"

	"github.com/jwdevantier/tapdance/internal/assert"
)

const modeEnv = "TAPDANCE_ASSERT_TEST_MODE"

func TestMain(m *testing.M) {
	switch os.Getenv(modeEnv) {
	case "fail":
		assert.That(1 == 2, "1 == 2")
		os.Exit(0) // unreachable if assert.That aborted, as it must
	case "":
		os.Exit(m.Run())
	}
}

func TestThat_PassingConditionReturns(t *testing.T) {
	assert.That(1+1 == 2, "arithmetic broke")
}

func TestThat_FailingConditionAbortsAndReportsMessage(t *testing.T) {
	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Env = append(os.Environ(), modeEnv+"=fail")
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	must.NotNil(t, err)

	status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus)
	must.True(t, ok)
	must.True(t, status.Signaled())
	must.Eq(t, syscall.SIGABRT, status.Signal())
	must.True(t, strings.Contains(stderr.String(), "assertion failed: 1 == 2"))
}
