package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const okGraph = `
name: smoke
tasks:
  - name: build
    command: sh
    args: ["-c", "echo building"]
  - name: test
    command: sh
    args: ["-c", "echo testing"]
    depends_on: [build]
`

const failingGraph = `
name: broken
tasks:
  - name: build
    command: sh
    args: ["-c", "exit 2"]
  - name: test
    command: sh
    args: ["-c", "echo testing"]
    depends_on: [build]
`

var _ = Describe("taskrunner", func() {
	var (
		dir  string
		data string
		out  bytes.Buffer
	)

	execute := func(args ...string) error {
		out.Reset()
		root := newRootCommand()
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append(args, "--data-folder", data, "--log-level", "error"))
		return root.Execute()
	}

	writeGraph := func(content string) string {
		path := filepath.Join(dir, "graph.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		color.NoColor = true
		dir = GinkgoT().TempDir()
		data = filepath.Join(dir, "data")
	})

	Context("run", func() {
		// Given a graph file of two dependent commands
		// When the run command executes it
		// Then the summary lists both tasks as succeeded
		It("should run a graph and print its summary", func() {
			graph := writeGraph(okGraph)

			err := execute("run", "--graph", graph, "--workers", "2")

			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("Graph:   smoke"))
			Expect(out.String()).To(ContainSubstring("2 succeeded, 0 failed, 0 cancelled"))
		})

		It("should accept the graph file as argument", func() {
			graph := writeGraph(okGraph)

			Expect(execute("run", graph)).To(Succeed())
		})

		It("should fail when a task fails", func() {
			graph := writeGraph(failingGraph)

			err := execute("run", "--graph", graph)

			Expect(err).To(MatchError(ContainSubstring("failed")))
			Expect(out.String()).To(ContainSubstring("1 succeeded, 1 failed, 0 cancelled"))
		})

		It("should cancel dependents with --stop-on-failure", func() {
			graph := writeGraph(failingGraph)

			err := execute("run", "--graph", graph, "--stop-on-failure")

			Expect(err).To(MatchError(ContainSubstring("aborted")))
			Expect(out.String()).To(ContainSubstring("0 succeeded, 1 failed, 1 cancelled"))
		})

		It("should require a graph file", func() {
			Expect(execute("run")).To(MatchError(ContainSubstring("a graph file is required")))
		})

		It("should reject an invalid worker count", func() {
			graph := writeGraph(okGraph)

			Expect(execute("run", graph, "--workers", "0")).To(Succeed())
			Expect(execute("run", graph, "--workers=-2")).To(MatchError(ContainSubstring("invalid number of workers")))
		})
	})

	Context("results", func() {
		It("should report that no run exists", func() {
			Expect(execute("results")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("no run found"))
		})

		// Given a stored failing run
		// When results are filtered on failed tasks
		// Then only the failed task is listed
		It("should show the results of the latest run", func() {
			Expect(execute("run", writeGraph(failingGraph))).NotTo(Succeed())

			Expect(execute("results", "--status", "failed")).To(Succeed())

			Expect(out.String()).To(ContainSubstring("Graph:   broken"))
			Expect(out.String()).To(ContainSubstring(`command "sh" exited with code 2`))
			Expect(out.String()).NotTo(ContainSubstring("test  "))
		})

		It("should reject an unknown status", func() {
			Expect(execute("results", "--status", "weird")).To(MatchError(ContainSubstring("invalid task status")))
		})

		It("should fail for an unknown run", func() {
			Expect(execute("results", "--run", "missing")).To(MatchError(ContainSubstring(`run "missing" not found`)))
		})
	})

	Context("configuration", func() {
		It("should read settings from the environment", func() {
			GinkgoT().Setenv("TASKRUNNER_WORKERS", "7")
			GinkgoT().Setenv("TASKRUNNER_STOP_ON_FAILURE", "true")

			cfg, err := loadConfig(newViper())

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Runner.Workers).To(Equal(7))
			Expect(cfg.Runner.StopOnFailure).To(BeTrue())
			Expect(cfg.LogLevel).To(Equal("info"))
		})
	})

	Context("serve", func() {
		It("should reject an unknown server mode", func() {
			err := execute("serve", "--server-mode", "staging")

			Expect(err).To(MatchError(ContainSubstring("invalid server mode")))
		})
	})

	Context("version", func() {
		It("should print the version", func() {
			Expect(execute("version")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("taskrunner v0.0.0"))
		})
	})
})
