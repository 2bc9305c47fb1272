package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/recallhq/recall/internal/models"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage the to-do search index",
}

var (
	todoAddDescription string
	todoAddCategory    string
	todoAddPriority    int
	todoAddStatus      string
	todoAddDue         string
	todoAddTags        []string
	todoSearchLimit    int
)

var todoAddCmd = &cobra.Command{
	Use:   "add <id> <title>",
	Short: "Add or update a to-do in the search index",
	Args:  cobra.ExactArgs(2),
	RunE:  runTodoAdd,
}

var todoDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a to-do from the search index",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoDelete,
}

var todoSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the to-do index",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoSearch,
}

func init() {
	todoAddCmd.Flags().StringVar(&todoAddDescription, "description", "", "To-do description")
	todoAddCmd.Flags().StringVar(&todoAddCategory, "category", "", "To-do category")
	todoAddCmd.Flags().IntVar(&todoAddPriority, "priority", 2, "Priority (1 = low, 2 = medium, 3 = high)")
	todoAddCmd.Flags().StringVar(&todoAddStatus, "status", models.TodoStatusPending, "Status (pending, in_progress, completed)")
	todoAddCmd.Flags().StringVar(&todoAddDue, "due", "", "Due date (YYYY-MM-DD)")
	todoAddCmd.Flags().StringSliceVar(&todoAddTags, "tags", nil, "Comma-separated tags")
	todoSearchCmd.Flags().IntVarP(&todoSearchLimit, "limit", "n", 0, "Maximum results (0 = configured default)")

	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoDeleteCmd)
	todoCmd.AddCommand(todoSearchCmd)
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid todo id %q: %w", args[0], err)
	}

	todo := &models.Todo{
		ID:          id,
		Title:       args[1],
		Description: todoAddDescription,
		Category:    todoAddCategory,
		Priority:    todoAddPriority,
		Status:      todoAddStatus,
		Tags:        todoAddTags,
		UpdatedAt:   time.Now(),
	}
	if todoAddDue != "" {
		due, err := time.Parse("2006-01-02", todoAddDue)
		if err != nil {
			return fmt.Errorf("invalid due date %q: %w", todoAddDue, err)
		}
		todo.DueDate = &due
	}

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.TodoIndexer.AddTodo(cmd.Context(), todo); err != nil {
		return err
	}
	fmt.Printf("Indexed todo %d: %s\n", todo.ID, todo.Title)
	return nil
}

func runTodoDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid todo id %q: %w", args[0], err)
	}

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	deleted, err := application.TodoIndexer.DeleteTodo(cmd.Context(), id)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Printf("Deleted todo %d\n", id)
	} else {
		fmt.Printf("Todo %d was not indexed\n", id)
	}
	return nil
}

func runTodoSearch(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	hits, err := application.TodoIndexer.Search(cmd.Context(), args[0], todoSearchLimit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matching todos")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("[%d] %s (%s, score %.3f)\n", hit.ID, hit.Title, hit.Status, hit.Score)
	}
	return nil
}
