package main

import (
	"context"
	"fmt"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/lightplayer/lps/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Display the syntax tree of a script",
	Long: `Parse and type check the input and print its syntax tree.

Text output shows expressions one node per line with their resolved types.
JSON output nests every statement and expression.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, filename, err := getSource(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		var popts []parser.Option
		if filename != "" {
			popts = append(popts, parser.WithFilename(filename))
		}
		copts := []typecheck.Option{typecheck.WithFilename(filename), typecheck.WithSource(source)}
		ctx := context.Background()

		if viper.GetBool("expr") {
			pool, id, err := parser.ParseExpr(ctx, source, popts...)
			if err != nil {
				return err
			}
			if _, err := typecheck.CheckExpr(pool, id, copts...); err != nil {
				return err
			}
			if format == "json" {
				return printJSON(exprNode(pool, id))
			}
			fmt.Print(ast.Dump(pool, id))
			return nil
		}

		pool, prog, err := parser.Parse(ctx, source, popts...)
		if err != nil {
			return err
		}
		if _, err := typecheck.CheckProgram(pool, prog, copts...); err != nil {
			return err
		}
		if format == "json" {
			return printJSON(programNode(pool, prog))
		}
		printProgramAST(pool, prog)
		return nil
	},
}

// ASTNode represents a node in the JSON AST output
type ASTNode struct {
	Type     string     `json:"type"`
	Value    any        `json:"value,omitempty"`
	Result   string     `json:"result,omitempty"`
	Line     int        `json:"line,omitempty"`
	Children []*ASTNode `json:"children,omitempty"`
}

func programNode(pool *ast.Pool, prog *ast.Program) *ASTNode {
	root := &ASTNode{Type: "Program"}
	for _, fn := range prog.Functions {
		node := &ASTNode{
			Type:   "Function",
			Value:  fn.Name,
			Result: fn.ReturnType.String(),
			Line:   fn.Span.Start.LineNumber(),
		}
		for _, param := range fn.Params {
			node.Children = append(node.Children, &ASTNode{Type: "Param", Value: param.Name, Result: param.Type.String()})
		}
		for _, id := range fn.Body {
			node.Children = append(node.Children, stmtNode(pool, id))
		}
		root.Children = append(root.Children, node)
	}
	for _, id := range prog.Stmts {
		root.Children = append(root.Children, stmtNode(pool, id))
	}
	return root
}

func stmtNode(pool *ast.Pool, id ast.StmtID) *ASTNode {
	if !id.Valid() {
		return nil
	}
	s := pool.Stmt(id)
	node := &ASTNode{Type: s.Kind.String(), Line: s.Span.Start.LineNumber()}
	if s.Kind == ast.VarDecl {
		node.Value = s.Name
		node.Result = s.DeclType.String()
	}
	add := func(child *ASTNode) {
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	add(stmtNode(pool, s.Init))
	add(exprNode(pool, s.Cond))
	add(exprNode(pool, s.Step))
	add(exprNode(pool, s.Value))
	add(stmtNode(pool, s.Then))
	add(stmtNode(pool, s.Else))
	for _, child := range s.Body {
		add(stmtNode(pool, child))
	}
	return node
}

func exprNode(pool *ast.Pool, id ast.ExprID) *ASTNode {
	if !id.Valid() {
		return nil
	}
	e := pool.Expr(id)
	node := &ASTNode{Type: e.Kind.String()}
	if e.Type != types.None {
		node.Result = e.Type.String()
	}
	switch {
	case e.Op != ast.OpNone:
		node.Value = e.Op.String()
	case e.Kind == ast.FloatLit:
		node.Value = e.Value.Float()
	case e.Kind == ast.IntLit:
		node.Value = e.Int
	case e.Kind == ast.BoolLit:
		node.Value = e.Int != 0
	case e.Name != "":
		node.Value = e.Name
	}
	for _, child := range append([]ast.ExprID{e.Cond, e.Left, e.Right}, e.Args...) {
		if c := exprNode(pool, child); c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

func printProgramAST(pool *ast.Pool, prog *ast.Program) {
	for _, fn := range prog.Functions {
		fmt.Printf("%s %s\n", fn.ReturnType, fn.Name)
		for _, id := range fn.Body {
			printStmtAST(pool, id, 1)
		}
	}
	if len(prog.Stmts) > 0 {
		fmt.Println("main")
	}
	for _, id := range prog.Stmts {
		printStmtAST(pool, id, 1)
	}
}

func printStmtAST(pool *ast.Pool, id ast.StmtID, depth int) {
	node := stmtNode(pool, id)
	if node == nil {
		return
	}
	printNode(node, depth)
}

func printNode(node *ASTNode, depth int) {
	fmt.Printf("%*s%s", depth*2, "", node.Type)
	if node.Value != nil {
		fmt.Printf(" %v", node.Value)
	}
	if node.Result != "" {
		fmt.Printf(" : %s", node.Result)
	}
	fmt.Println()
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}

func init() {
	astCmd.Flags().StringP("output", "o", "", "Output format (json, text)")
}
