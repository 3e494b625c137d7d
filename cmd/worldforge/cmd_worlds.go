package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"worldforge/internal/store"
)

var worldsCmd = &cobra.Command{
	Use:   "worlds",
	Short: "List or delete worlds in the database",
}

var worldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all worlds",
	RunE:  runWorldsList,
}

var worldsDeleteCmd = &cobra.Command{
	Use:   "delete [world-id]",
	Short: "Delete a world and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorldsDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats [world-id]",
	Short: "Show per-table row counts for a world",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	worldsCmd.AddCommand(worldsListCmd)
	worldsCmd.AddCommand(worldsDeleteCmd)
}

func runWorldsList(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	worlds, err := s.ListWorlds(cmd.Context())
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Println("No worlds in the database.")
		return nil
	}
	for _, w := range worlds {
		tags := ""
		if len(w.Tags) > 0 {
			tags = " [" + strings.Join(w.Tags, ", ") + "]"
		}
		fmt.Printf("%s  %-24s created %s%s\n",
			w.ID, w.Name, w.CreatedAt.Format("2006-01-02"), tags)
	}
	return nil
}

func runWorldsDelete(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteWorld(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted world %s.\n", args[0])
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := s.GetWorld(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	stats, err := s.Stats(cmd.Context(), w.ID)
	if err != nil {
		return err
	}

	fmt.Printf("World %q (%s)\n", w.Name, w.ID)
	tables := make([]string, 0, len(stats))
	for t := range stats {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	total := 0
	for _, t := range tables {
		fmt.Printf("  %-18s %d\n", t, stats[t])
		total += stats[t]
	}
	fmt.Printf("  %-18s %d\n", "total", total)
	return nil
}
