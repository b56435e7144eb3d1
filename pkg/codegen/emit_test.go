package codegen_test

import (
	"errors"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xplshn/gpl0/pkg/ast"
	"github.com/xplshn/gpl0/pkg/codegen"
	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/isa"
)

// writeProgram is: var x; x := 3; if x < 5 then write x else write 0
func writeProgram() *ast.Node {
	var p ast.Pos
	x := func() *ast.Node { return ast.NewIdent(p, "x", 0, 0) }
	return ast.NewProgram(p, ast.NewBlock(p,
		[]*ast.Node{ast.NewVarDecl(p, "x", nil)},
		[]*ast.Node{
			ast.NewAssign(p, x(), ast.NewLiteral(p, 3)),
			ast.NewIf(p,
				ast.NewBinaryOp(p, ast.OpLt, x(), ast.NewLiteral(p, 5)),
				ast.NewWrite(p, x()),
				ast.NewWrite(p, ast.NewLiteral(p, 0))),
		}))
}

var _ = Describe("Emit", func() {
	var (
		mockCtrl *gomock.Controller
		writer   *MockObjectWriter
		ctx      *codegen.Context
		obj      *codegen.Object
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		writer = NewMockObjectWriter(mockCtrl)

		ctx = codegen.NewContext(config.NewConfig())
		var err error
		obj, err = ctx.GenerateProgram(writeProgram())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write the header, the text, the literals and then close", func() {
		var calls []*gomock.Call
		calls = append(calls, writer.EXPECT().WriteHeader(obj.Header).Return(nil))
		for _, in := range obj.Text.Instructions() {
			word, err := isa.Encode(in)
			Expect(err).NotTo(HaveOccurred())
			calls = append(calls, writer.EXPECT().WriteWord(int32(word)).Return(nil))
		}
		for _, v := range []int32{3, 5, 0} {
			calls = append(calls, writer.EXPECT().WriteWord(v).Return(nil))
		}
		calls = append(calls, writer.EXPECT().Close().Return(nil))
		gomock.InOrder(calls...)

		Expect(ctx.Emit(writer, obj)).To(Succeed())
		Expect(ctx.Literals().Iterating()).To(BeFalse())
	})

	It("should stop and close when the header cannot be written", func() {
		full := errors.New("disk full")
		gomock.InOrder(
			writer.EXPECT().WriteHeader(gomock.Any()).Return(full),
			writer.EXPECT().Close().Return(nil),
		)

		err := ctx.Emit(writer, obj)
		Expect(errors.Is(err, full)).To(BeTrue())
	})

	It("should stop at the first failing word", func() {
		broken := errors.New("broken pipe")
		gomock.InOrder(
			writer.EXPECT().WriteHeader(gomock.Any()).Return(nil),
			writer.EXPECT().WriteWord(gomock.Any()).Return(nil).Times(2),
			writer.EXPECT().WriteWord(gomock.Any()).Return(broken),
			writer.EXPECT().Close().Return(nil),
		)

		err := ctx.Emit(writer, obj)
		Expect(err).To(MatchError(ContainSubstring("text word 2")))
		Expect(errors.Is(err, broken)).To(BeTrue())
	})

	It("should report a failing close", func() {
		writer.EXPECT().WriteHeader(gomock.Any()).Return(nil)
		writer.EXPECT().WriteWord(gomock.Any()).Return(nil).AnyTimes()
		writer.EXPECT().Close().Return(errors.New("cannot sync"))

		Expect(ctx.Emit(writer, obj)).To(MatchError(ContainSubstring("cannot sync")))
	})

	It("should refuse an object generated by another context", func() {
		var p ast.Pos
		other := codegen.NewContext(config.NewConfig())
		otherObj, err := other.GenerateProgram(ast.NewProgram(p, ast.NewBlock(p, nil, []*ast.Node{
			ast.NewWrite(p, ast.NewLiteral(p, 1)),
			ast.NewWrite(p, ast.NewLiteral(p, 2)),
		})))
		Expect(err).NotTo(HaveOccurred())

		writer.EXPECT().Close().Return(nil)
		Expect(ctx.Emit(writer, otherObj)).To(MatchError(ContainSubstring("header describes")))
	})
})
